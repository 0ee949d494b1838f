// Package testutil provides testing utilities for database-backed tests.
//
// Database Setup:
//
//	db := testutil.SetupDB(t)
//
// Each test gets its own SQLite database file in a temporary directory that
// is removed when the test finishes, so tests never share state. The file is
// migrated to the latest schema version before it is returned.
package testutil

import (
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/allisson/finstore/internal/database"
	"github.com/allisson/finstore/internal/schema"
)

// Logger returns a logger that discards everything. Tests that assert on log
// output build their own.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// DBPath returns a database file path inside a per-test temporary directory.
func DBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "finstore-test.db")
}

// SetupDB creates a fresh SQLite database migrated to the latest schema
// version. The connection is closed automatically when the test finishes.
func SetupDB(t *testing.T) *sql.DB {
	t.Helper()

	db := SetupRawDB(t)
	registry, err := schema.NewRegistry(schema.Versions())
	require.NoError(t, err, "failed to build schema registry")
	require.NoError(t, schema.Migrate(db, registry, Logger()), "failed to migrate test database")

	return db
}

// SetupRawDB creates a fresh SQLite database without applying migrations.
func SetupRawDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Connect(database.Config{Path: DBPath(t)})
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		require.NoError(t, db.Close(), "failed to close test database")
	})

	return db
}

// RawColumn reads one column of one row without going through any decryption
// path. Tests use it to assert on what is actually stored on disk.
func RawColumn(t *testing.T, db *sql.DB, table, column, id string) string {
	t.Helper()

	var value string
	query := "SELECT " + column + " FROM " + table + " WHERE id = ?"
	require.NoError(t, db.QueryRow(query, id).Scan(&value), "failed to read raw column")
	return value
}
