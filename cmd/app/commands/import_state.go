package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/allisson/finstore/internal/app"
	"github.com/allisson/finstore/internal/config"
)

// RunImport opens the store and replaces its contents with the state from an
// exported blob. A wrong password leaves the store untouched.
func RunImport(ctx context.Context, password, input string) error {
	blob, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	dataStore, err := container.Store()
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := dataStore.Open(ctx); err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if err := dataStore.ImportState(ctx, password, blob); err != nil {
		return fmt.Errorf("failed to import state: %w", err)
	}

	logger.Info("import completed", slog.String("input", input))
	return nil
}
