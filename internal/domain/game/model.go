// Package game defines the catalog entry, the closed genre set and the
// game mutation shapes. Rating is derived state owned by the review
// aggregation; it is not part of Patch.
package game

import (
	"strings"
	"time"

	"github.com/topbestgames/platform/internal/core"
)

// Genre is one of a closed set of catalog genres.
type Genre string

const (
	GenreAction     Genre = "action"
	GenreAdventure  Genre = "adventure"
	GenreRPG        Genre = "rpg"
	GenreStrategy   Genre = "strategy"
	GenreSimulation Genre = "simulation"
	GenreSports     Genre = "sports"
	GenreRacing     Genre = "racing"
	GenrePuzzle     Genre = "puzzle"
	GenreShooter    Genre = "shooter"
	GenreFighting   Genre = "fighting"
	GenrePlatformer Genre = "platformer"
	GenreSurvival   Genre = "survival"
	GenreHorror     Genre = "horror"
	GenreOther      Genre = "other"
)

// Genres lists every valid genre, in display order.
var Genres = []Genre{
	GenreAction, GenreAdventure, GenreRPG, GenreStrategy, GenreSimulation,
	GenreSports, GenreRacing, GenrePuzzle, GenreShooter, GenreFighting,
	GenrePlatformer, GenreSurvival, GenreHorror, GenreOther,
}

// Valid reports whether g is a member of the genre set.
func (g Genre) Valid() bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

// Game is a catalog entry. Rating is the mean of approved review ratings,
// maintained by the storage layer; a zero ReleaseDate means unknown.
type Game struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Genre       Genre     `json:"genre"`
	Developer   string    `json:"developer"`
	ImageURL    string    `json:"imageUrl"`
	Rating      float64   `json:"rating"`
	ReleaseDate time.Time `json:"releaseDate,omitempty"`
	IsFeatured  bool      `json:"isFeatured"`
	IsTrending  bool      `json:"isTrending"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks the fields required to create a catalog entry.
func (g Game) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return core.RequiredError("title")
	}
	if strings.TrimSpace(g.Description) == "" {
		return core.RequiredError("description")
	}
	if g.Genre == "" {
		return core.RequiredError("genre")
	}
	if !g.Genre.Valid() {
		return core.NewValidationError("genre", "must be one of the known genres")
	}
	if strings.TrimSpace(g.Developer) == "" {
		return core.RequiredError("developer")
	}
	if strings.TrimSpace(g.ImageURL) == "" {
		return core.RequiredError("imageUrl")
	}
	return nil
}

// Patch is a partial update. Nil fields are left untouched. Rating has no
// patch field on purpose: it is recomputed from reviews, never set directly.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Genre       *Genre     `json:"genre,omitempty"`
	Developer   *string    `json:"developer,omitempty"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
	IsFeatured  *bool      `json:"isFeatured,omitempty"`
	IsTrending  *bool      `json:"isTrending,omitempty"`
}

// Validate checks the fields the patch supplies.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return core.RequiredError("title")
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return core.RequiredError("description")
	}
	if p.Genre != nil && !p.Genre.Valid() {
		return core.NewValidationError("genre", "must be one of the known genres")
	}
	if p.Developer != nil && strings.TrimSpace(*p.Developer) == "" {
		return core.RequiredError("developer")
	}
	if p.ImageURL != nil && strings.TrimSpace(*p.ImageURL) == "" {
		return core.RequiredError("imageUrl")
	}
	return nil
}

// Apply copies the supplied fields onto g.
func (p Patch) Apply(g *Game) {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.Genre != nil {
		g.Genre = *p.Genre
	}
	if p.Developer != nil {
		g.Developer = *p.Developer
	}
	if p.ImageURL != nil {
		g.ImageURL = *p.ImageURL
	}
	if p.ReleaseDate != nil {
		g.ReleaseDate = *p.ReleaseDate
	}
	if p.IsFeatured != nil {
		g.IsFeatured = *p.IsFeatured
	}
	if p.IsTrending != nil {
		g.IsTrending = *p.IsTrending
	}
}
