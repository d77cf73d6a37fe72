// Command server runs the game catalog API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/topbestgames/platform/internal/runtime"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := runtime.NewApplication(ctx)
	if err != nil {
		return err
	}

	if err := app.Run(ctx); err != nil {
		return err
	}
	return app.Shutdown()
}
