package storage

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/topbestgames/platform/internal/domain/game"
	"github.com/topbestgames/platform/internal/domain/user"
)

//go:embed seed_games.yaml
var seedCatalogYAML []byte

// Seed admin identity. The password comes from configuration at startup.
const (
	SeedAdminUsername = "admin"
	SeedAdminEmail    = "admin@topbestgames.com"
	SeedAdminFullName = "Administrator"
)

type seedGame struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Genre       game.Genre `yaml:"genre"`
	Developer   string     `yaml:"developer"`
	ImageURL    string     `yaml:"imageUrl"`
	Rating      float64    `yaml:"rating"`
	ReleaseDate time.Time  `yaml:"releaseDate"`
	IsFeatured  bool       `yaml:"isFeatured"`
	IsTrending  bool       `yaml:"isTrending"`
}

var (
	seedOnce    sync.Once
	seedErr     error
	seedCatalog []game.Game
)

// SeedCatalog returns the sample games shipped with the server, parsed from
// the embedded catalog file. Callers receive a fresh slice each time.
func SeedCatalog() ([]game.Game, error) {
	seedOnce.Do(func() {
		var doc struct {
			Games []seedGame `yaml:"games"`
		}
		if err := yaml.Unmarshal(seedCatalogYAML, &doc); err != nil {
			seedErr = fmt.Errorf("parse seed catalog: %w", err)
			return
		}
		for _, sg := range doc.Games {
			seedCatalog = append(seedCatalog, game.Game{
				Title:       sg.Title,
				Description: sg.Description,
				Genre:       sg.Genre,
				Developer:   sg.Developer,
				ImageURL:    sg.ImageURL,
				Rating:      sg.Rating,
				ReleaseDate: sg.ReleaseDate,
				IsFeatured:  sg.IsFeatured,
				IsTrending:  sg.IsTrending,
			})
		}
	})
	if seedErr != nil {
		return nil, seedErr
	}
	out := make([]game.Game, len(seedCatalog))
	copy(out, seedCatalog)
	return out, nil
}

// SeedAdmin builds the initial administrator account with a bcrypt hash of
// password.
func SeedAdmin(password string) (user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash seed admin password: %w", err)
	}
	return user.User{
		Username: SeedAdminUsername,
		Password: string(hash),
		Email:    SeedAdminEmail,
		FullName: SeedAdminFullName,
		IsAdmin:  true,
	}, nil
}
