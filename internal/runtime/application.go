// Package runtime assembles the application: configuration, logging, the
// selected storage backend, seeding, the HTTP handler and the server.
package runtime

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/topbestgames/platform/internal/auth"
	"github.com/topbestgames/platform/internal/config"
	"github.com/topbestgames/platform/internal/httpapi"
	"github.com/topbestgames/platform/internal/httpserver"
	"github.com/topbestgames/platform/internal/platform/database"
	"github.com/topbestgames/platform/internal/platform/migrations"
	"github.com/topbestgames/platform/internal/storage"
	"github.com/topbestgames/platform/internal/storage/postgres"
	"github.com/topbestgames/platform/pkg/logger"
)

// Application is the assembled process.
type Application struct {
	cfg    *config.Config
	log    *logger.Logger
	store  storage.Store
	server *httpserver.Server
	db     *sql.DB
}

// NewApplication loads configuration and wires every component. The
// returned application is ready to Run.
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Logging)

	app := &Application{cfg: cfg, log: log}
	if err := app.buildStore(ctx); err != nil {
		return nil, err
	}

	authMgr := auth.NewManager(app.store, log.WithField("component", "auth"), cfg.Auth.SessionTTL())
	handler := httpapi.New(app.store, authMgr, log.WithField("component", "httpapi"))
	app.server = httpserver.New(cfg.Server, log.WithField("component", "httpserver"), handler.Routes())

	log.WithField("driver", cfg.Database.Driver).Info("application ready")
	return app, nil
}

// buildStore selects the backend by driver, applies the schema, and runs
// the seeding and credential-repair passes.
func (a *Application) buildStore(ctx context.Context) error {
	switch a.cfg.Database.Driver {
	case "memory":
		mem := storage.NewMemory()
		if err := mem.Seed(ctx, a.cfg.Auth.SeedAdminPassword); err != nil {
			return fmt.Errorf("seed memory store: %w", err)
		}
		a.store = mem
		return nil

	case "postgres":
		db, err := database.Open(ctx, a.cfg.Database)
		if err != nil {
			return err
		}
		if err := migrations.Apply(ctx, db); err != nil {
			db.Close()
			return err
		}

		pg := postgres.New(db, a.log.WithField("component", "postgres"))
		repaired, err := pg.RepairLegacyCredentials(ctx, a.cfg.Auth.SeedAdminPassword)
		if err != nil {
			db.Close()
			return fmt.Errorf("repair legacy credentials: %w", err)
		}
		if !repaired {
			if _, err := pg.SeedIfEmpty(ctx, a.cfg.Auth.SeedAdminPassword); err != nil {
				db.Close()
				return fmt.Errorf("seed database: %w", err)
			}
		}

		a.db = db
		a.store = pg
		return nil

	default:
		return fmt.Errorf("unknown database driver %q", a.cfg.Database.Driver)
	}
}

// Run serves until ctx is canceled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown drains the server and closes the database.
func (a *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout())
	defer cancel()

	err := a.server.Shutdown(ctx)
	if a.db != nil {
		if closeErr := a.db.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
