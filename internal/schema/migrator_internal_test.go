package schema

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/finstore/internal/database"
)

// TestMigrateFromOlderVersion pins a database at the first schema version,
// writes data, then upgrades to the latest version and checks the data and
// the new tables are both present.
func TestMigrateFromOlderVersion(t *testing.T) {
	db, err := database.Connect(database.Config{Path: filepath.Join(t.TempDir(), "upgrade-test.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	source, err := iofs.New(migrationsFS, "migrations/sqlite")
	require.NoError(t, err)
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	require.NoError(t, err)
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	require.NoError(t, err)
	require.NoError(t, m.Migrate(1))

	_, err = db.Exec(
		`INSERT INTO transactions
			(id, kind, category, amount_cents, occurred_at, description, merchant, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"tx-old", "expense", "groceries", 4250,
		"2026-08-01T10:00:00Z", "weekly shop", "corner market",
		"2026-08-01T10:00:00Z", "2026-08-01T10:00:00Z",
	)
	require.NoError(t, err)

	// Tables added after version 1 must not exist yet.
	var count int
	require.Error(t, db.QueryRow("SELECT COUNT(*) FROM notifications").Scan(&count))

	registry, err := NewRegistry(Versions())
	require.NoError(t, err)
	require.NoError(t, Migrate(db, registry, slog.New(slog.NewTextHandler(io.Discard, nil))))

	version, err := CurrentVersion(db)
	require.NoError(t, err)
	assert.Equal(t, registry.Latest(), version)

	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM notifications").Scan(&count))
	assert.Equal(t, 0, count)

	var description string
	require.NoError(t, db.QueryRow("SELECT description FROM transactions WHERE id = 'tx-old'").Scan(&description))
	assert.Equal(t, "weekly shop", description)
}
