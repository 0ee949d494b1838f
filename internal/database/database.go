// Package database provides embedded database connection management and utilities.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Config holds database configuration settings.
type Config struct {
	Path        string
	BusyTimeout time.Duration
}

// Connect opens the SQLite database file and applies connection pragmas.
//
// WAL mode keeps readers from blocking the single writer, and the busy timeout
// lets concurrent in-process callers wait for the write lock instead of
// failing immediately. Foreign keys are enforced because SQLite ships with
// them disabled.
func Connect(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The modernc driver serializes access per connection; a single connection
	// avoids SQLITE_BUSY between pooled connections of the same process.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout.Milliseconds()),
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
