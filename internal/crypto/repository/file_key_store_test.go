package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/finstore/internal/crypto/domain"
)

func setupKeyStore(t *testing.T) (*FileKeyStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.json")
	return NewFileKeyStore(path), path
}

func TestFileKeyStore(t *testing.T) {
	t.Run("get on a missing file reports not found", func(t *testing.T) {
		store, _ := setupKeyStore(t)

		entry, found, err := store.Get(cryptoDomain.KeyNameDevice)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, entry)
	})

	t.Run("put then get round trips an entry", func(t *testing.T) {
		store, path := setupKeyStore(t)

		original := &cryptoDomain.KeyEntry{
			Name:      cryptoDomain.KeyNameDevice,
			Wrapped:   []byte("wrapped key material"),
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, store.Put(original))

		entry, found, err := store.Get(cryptoDomain.KeyNameDevice)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, original.Wrapped, entry.Wrapped)
		assert.Equal(t, original.CreatedAt, entry.CreatedAt)

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("put replaces an existing entry", func(t *testing.T) {
		store, _ := setupKeyStore(t)

		require.NoError(t, store.Put(&cryptoDomain.KeyEntry{
			Name:    cryptoDomain.KeyNameDevice,
			Wrapped: []byte("first"),
		}))
		require.NoError(t, store.Put(&cryptoDomain.KeyEntry{
			Name:    cryptoDomain.KeyNameDevice,
			Wrapped: []byte("second"),
		}))

		entry, found, err := store.Get(cryptoDomain.KeyNameDevice)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte("second"), entry.Wrapped)
	})

	t.Run("entries with different names do not collide", func(t *testing.T) {
		store, _ := setupKeyStore(t)

		require.NoError(t, store.Put(&cryptoDomain.KeyEntry{
			Name:    cryptoDomain.KeyNameDevice,
			Wrapped: []byte("device"),
		}))
		require.NoError(t, store.Put(&cryptoDomain.KeyEntry{
			Name: cryptoDomain.KeyNamePasswordCheck,
			Salt: []byte("salty"),
		}))

		device, found, err := store.Get(cryptoDomain.KeyNameDevice)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte("device"), device.Wrapped)

		check, found, err := store.Get(cryptoDomain.KeyNamePasswordCheck)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte("salty"), check.Salt)
	})

	t.Run("put rejects a nameless entry", func(t *testing.T) {
		store, _ := setupKeyStore(t)
		assert.Error(t, store.Put(&cryptoDomain.KeyEntry{}))
		assert.Error(t, store.Put(nil))
	})

	t.Run("delete removes an entry", func(t *testing.T) {
		store, _ := setupKeyStore(t)

		require.NoError(t, store.Put(&cryptoDomain.KeyEntry{
			Name:    cryptoDomain.KeyNameDevice,
			Wrapped: []byte("device"),
		}))
		require.NoError(t, store.Delete(cryptoDomain.KeyNameDevice))

		_, found, err := store.Get(cryptoDomain.KeyNameDevice)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("delete of a missing entry is not an error", func(t *testing.T) {
		store, _ := setupKeyStore(t)
		assert.NoError(t, store.Delete("does-not-exist"))
	})

	t.Run("corrupt file yields an error", func(t *testing.T) {
		store, path := setupKeyStore(t)
		require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o600))

		_, _, err := store.Get(cryptoDomain.KeyNameDevice)
		assert.Error(t, err)
	})

	t.Run("no temp files are left behind", func(t *testing.T) {
		store, path := setupKeyStore(t)
		require.NoError(t, store.Put(&cryptoDomain.KeyEntry{
			Name:    cryptoDomain.KeyNameDevice,
			Wrapped: []byte("device"),
		}))

		files, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, filepath.Base(path), files[0].Name())
	})
}
