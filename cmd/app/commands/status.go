package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/allisson/finstore/internal/app"
	"github.com/allisson/finstore/internal/config"
	"github.com/allisson/finstore/internal/database"
	"github.com/allisson/finstore/internal/schema"
)

// RunStatus reports the schema version and per-table row counts of the
// database file. Counting never decrypts anything, so no key material is
// required.
func RunStatus(ctx context.Context, format string, io IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()

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

	version, err := schema.CurrentVersion(db)
	if err != nil {
		return err
	}

	counts := make(map[string]int64)
	if version > 0 {
		for _, table := range registry.TableNames() {
			var count int64
			// Table names come from the static schema registry, never from input.
			query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
			if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
				continue // table not created at this schema version
			}
			counts[table] = count
		}
	}

	if format == "json" {
		return json.NewEncoder(io.Writer).Encode(map[string]any{
			"database":       cfg.DatabasePath,
			"schema_version": version,
			"latest_version": registry.Latest(),
			"row_counts":     counts,
		})
	}

	fmt.Fprintf(io.Writer, "Database: %s\n", cfg.DatabasePath)
	fmt.Fprintf(io.Writer, "Schema version: %d (latest %d)\n", version, registry.Latest())
	for _, table := range registry.TableNames() {
		if count, ok := counts[table]; ok {
			fmt.Fprintf(io.Writer, "  %s: %d row(s)\n", table, count)
		}
	}
	return nil
}
