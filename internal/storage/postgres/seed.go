package postgres

import (
	"context"
	"fmt"

	"github.com/topbestgames/platform/internal/storage"
)

// SeedIfEmpty installs the administrator account and the sample catalog
// when the users table is empty. Reports whether seeding ran.
func (s *Store) SeedIfEmpty(ctx context.Context, adminPassword string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if err := s.seed(ctx, adminPassword); err != nil {
		return false, err
	}
	s.log.WithField("games", "catalog").Info("seeded empty database")
	return true, nil
}

func (s *Store) seed(ctx context.Context, adminPassword string) error {
	admin, err := storage.SeedAdmin(adminPassword)
	if err != nil {
		return err
	}
	if _, err := s.CreateUser(ctx, admin); err != nil {
		return err
	}
	catalog, err := storage.SeedCatalog()
	if err != nil {
		return err
	}
	for _, g := range catalog {
		if _, err := s.insertGame(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

// RepairLegacyCredentials detects password hashes left behind by the old
// scrypt deployment (hex "hash.salt" pairs rather than bcrypt). Those
// credentials cannot be verified anymore, so the user-derived tables are
// wiped and reseeded. Analytics history is kept. Reports whether a repair
// ran.
func (s *Store) RepairLegacyCredentials(ctx context.Context, adminPassword string) (bool, error) {
	var legacy int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE password NOT LIKE '$2%'`,
	).Scan(&legacy)
	if err != nil {
		return false, fmt.Errorf("count legacy credentials: %w", err)
	}
	if legacy == 0 {
		return false, nil
	}

	s.log.WithField("accounts", legacy).Warn("legacy password hashes found, wiping and reseeding user data")

	_, err = s.db.ExecContext(ctx,
		`TRUNCATE users, games, reviews, favorites, activity_logs, sessions RESTART IDENTITY CASCADE`)
	if err != nil {
		return false, fmt.Errorf("wipe user data: %w", err)
	}
	if err := s.seed(ctx, adminPassword); err != nil {
		return false, err
	}
	return true, nil
}
