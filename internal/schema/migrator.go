package schema

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate brings the database to the registry's latest version, applying
// pending versions in ascending order. Migrations are additive only: new
// tables and indexes are created, existing rows and indexes stay untouched.
//
// Returns ErrSchemaVersion if the on-disk version is newer than the registry
// declares (the database was written by a newer build) and ErrMigration if a
// step cannot be applied cleanly or a previous run left the schema dirty. Both
// are fatal for the calling open.
func Migrate(db *sql.DB, registry *Registry, logger *slog.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations/sqlite")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMigration, err)
	}

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMigration, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMigration, err)
	}

	current, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		current = 0
	case err != nil:
		return fmt.Errorf("%w: %v", ErrMigration, err)
	case dirty:
		return fmt.Errorf("%w: schema version %d is dirty", ErrMigration, current)
	}

	if uint(current) > registry.Latest() {
		return fmt.Errorf(
			"%w: on-disk version %d, highest declared version %d",
			ErrSchemaVersion, current, registry.Latest(),
		)
	}

	if uint(current) == registry.Latest() {
		return nil
	}

	logger.Info("applying schema migrations",
		slog.Uint64("from", uint64(current)),
		slog.Uint64("to", uint64(registry.Latest())),
	)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: %v", ErrMigration, err)
	}

	logger.Info("schema migrations completed")
	return nil
}

// CurrentVersion reports the schema version recorded in the database.
// Returns 0 for a database no migration has touched yet.
func CurrentVersion(db *sql.DB) (uint, error) {
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMigration, err)
	}

	version, dirty, err := driver.Version()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMigration, err)
	}
	if version < 0 {
		return 0, nil
	}
	if dirty {
		return 0, fmt.Errorf("%w: schema version %d is dirty", ErrMigration, version)
	}
	return uint(version), nil
}
