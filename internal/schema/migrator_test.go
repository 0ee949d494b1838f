package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/finstore/internal/schema"
	"github.com/allisson/finstore/internal/testutil"
)

func TestMigrate(t *testing.T) {
	registry, err := schema.NewRegistry(schema.Versions())
	require.NoError(t, err)

	t.Run("migrates a fresh database to the latest version", func(t *testing.T) {
		db := testutil.SetupRawDB(t)

		require.NoError(t, schema.Migrate(db, registry, testutil.Logger()))

		version, err := schema.CurrentVersion(db)
		require.NoError(t, err)
		assert.Equal(t, registry.Latest(), version)

		for _, table := range registry.TableNames() {
			var count int
			query := "SELECT COUNT(*) FROM " + table
			require.NoError(t, db.QueryRow(query).Scan(&count), "table %s should exist", table)
			assert.Equal(t, 0, count)
		}
	})

	t.Run("migrating an up-to-date database is a no-op", func(t *testing.T) {
		db := testutil.SetupDB(t)

		require.NoError(t, schema.Migrate(db, registry, testutil.Logger()))

		version, err := schema.CurrentVersion(db)
		require.NoError(t, err)
		assert.Equal(t, registry.Latest(), version)
	})

	t.Run("existing rows survive migration", func(t *testing.T) {
		db := testutil.SetupRawDB(t)
		require.NoError(t, schema.Migrate(db, registry, testutil.Logger()))

		_, err := db.Exec(
			`INSERT INTO transactions
				(id, kind, category, amount_cents, occurred_at, description, merchant, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			"tx-1", "expense", "groceries", 4250,
			"2026-08-01T10:00:00Z", "weekly shop", "corner market",
			"2026-08-01T10:00:00Z", "2026-08-01T10:00:00Z",
		)
		require.NoError(t, err)

		require.NoError(t, schema.Migrate(db, registry, testutil.Logger()))

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("refuses a database written by a newer build", func(t *testing.T) {
		db := testutil.SetupDB(t)

		_, err := db.Exec("UPDATE schema_migrations SET version = ?", registry.Latest()+1)
		require.NoError(t, err)

		err = schema.Migrate(db, registry, testutil.Logger())
		assert.ErrorIs(t, err, schema.ErrSchemaVersion)
	})

	t.Run("refuses a dirty schema", func(t *testing.T) {
		db := testutil.SetupDB(t)

		_, err := db.Exec("UPDATE schema_migrations SET dirty = 1")
		require.NoError(t, err)

		err = schema.Migrate(db, registry, testutil.Logger())
		assert.ErrorIs(t, err, schema.ErrMigration)
	})
}

func TestCurrentVersion(t *testing.T) {
	t.Run("untouched database reports zero", func(t *testing.T) {
		db := testutil.SetupRawDB(t)

		version, err := schema.CurrentVersion(db)
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
	})

	t.Run("migrated database reports the latest version", func(t *testing.T) {
		db := testutil.SetupDB(t)

		version, err := schema.CurrentVersion(db)
		require.NoError(t, err)
		assert.Equal(t, schema.Default().Latest(), version)
	})
}
