package commands

import (
	"fmt"
	"log/slog"

	"github.com/allisson/finstore/internal/app"
	"github.com/allisson/finstore/internal/config"
	"github.com/allisson/finstore/internal/database"
	"github.com/allisson/finstore/internal/schema"
)

// RunMigrations applies all pending schema migrations to the database file.
// Returns nil if the schema is already current.
func RunMigrations() error {
	cfg := config.Load()

	// Create container just for logger
	container := app.NewContainer(cfg)
	logger := container.Logger()

	logger.Info("running schema migrations",
		slog.String("database", cfg.DatabasePath),
	)

	registry, err := schema.NewRegistry(schema.Versions())
	if err != nil {
		return err
	}

	db, err := database.Connect(database.Config{
		Path:        cfg.DatabasePath,
		BusyTimeout: cfg.DBBusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	if err := schema.Migrate(db, registry, logger); err != nil {
		return err
	}

	logger.Info("migrations completed successfully")
	return nil
}
