package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("opens a new database file and applies pragmas", func(t *testing.T) {
		cfg := Config{
			Path:        filepath.Join(t.TempDir(), "test.db"),
			BusyTimeout: time.Second,
		}

		db, err := Connect(cfg)
		require.NoError(t, err)
		defer func() {
			require.NoError(t, db.Close())
		}()

		var journalMode string
		require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
		assert.Equal(t, "wal", journalMode)

		var foreignKeys int
		require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
		assert.Equal(t, 1, foreignKeys)

		var busyTimeout int
		require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
		assert.Equal(t, 1000, busyTimeout)
	})

	t.Run("fails when the database path is not usable", func(t *testing.T) {
		cfg := Config{
			Path:        filepath.Join(t.TempDir(), "missing", "nested", "test.db"),
			BusyTimeout: time.Second,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}
