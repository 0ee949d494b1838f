package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/finstore/internal/crypto/domain"
	cryptoRepository "github.com/allisson/finstore/internal/crypto/repository"
)

func setupKeyManager(t *testing.T, cfg KeyManagerConfig) (*KeyManagerService, *cryptoRepository.FileKeyStore, string) {
	t.Helper()

	keystorePath := filepath.Join(t.TempDir(), "keys.json")
	keystore := cryptoRepository.NewFileKeyStore(keystorePath)

	uri, err := NewBase64KeeperURI()
	require.NoError(t, err)
	keeper, err := NewKeeperService().OpenKeeper(context.Background(), uri)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, keeper.Close())
	})

	return NewKeyManager(keystore, keeper, NewAEADManager(), cfg), keystore, keystorePath
}

func TestKeyManagerGetOrCreateKey(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and persists a wrapped device key", func(t *testing.T) {
		km, keystore, _ := setupKeyManager(t, KeyManagerConfig{})

		key, err := km.GetOrCreateKey(ctx)
		require.NoError(t, err)
		assert.Len(t, key.Bytes(), cryptoDomain.KeySize)

		entry, found, err := keystore.Get(cryptoDomain.KeyNameDevice)
		require.NoError(t, err)
		require.True(t, found)
		assert.NotEmpty(t, entry.Wrapped)
		assert.NotEqual(t, key.Bytes(), entry.Wrapped)
	})

	t.Run("returns the cached key on repeated calls", func(t *testing.T) {
		km, _, _ := setupKeyManager(t, KeyManagerConfig{})

		key1, err := km.GetOrCreateKey(ctx)
		require.NoError(t, err)
		key2, err := km.GetOrCreateKey(ctx)
		require.NoError(t, err)
		assert.Same(t, key1, key2)
	})

	t.Run("reloads the same key from the persisted wrapped form", func(t *testing.T) {
		keystorePath := filepath.Join(t.TempDir(), "keys.json")
		keystore := cryptoRepository.NewFileKeyStore(keystorePath)

		uri, err := NewBase64KeeperURI()
		require.NoError(t, err)
		keeper, err := NewKeeperService().OpenKeeper(ctx, uri)
		require.NoError(t, err)
		defer func() {
			require.NoError(t, keeper.Close())
		}()

		km1 := NewKeyManager(keystore, keeper, NewAEADManager(), KeyManagerConfig{})
		key1, err := km1.GetOrCreateKey(ctx)
		require.NoError(t, err)

		km2 := NewKeyManager(keystore, keeper, NewAEADManager(), KeyManagerConfig{})
		key2, err := km2.GetOrCreateKey(ctx)
		require.NoError(t, err)

		assert.Equal(t, key1.Bytes(), key2.Bytes())
	})

	t.Run("corrupt keystore yields ErrKeyLoad", func(t *testing.T) {
		km, _, keystorePath := setupKeyManager(t, KeyManagerConfig{})
		require.NoError(t, os.WriteFile(keystorePath, []byte("{not json"), 0o600))

		_, err := km.GetOrCreateKey(ctx)
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyLoad)
	})

	t.Run("tampered wrapped material yields ErrKeyLoad", func(t *testing.T) {
		km, keystore, _ := setupKeyManager(t, KeyManagerConfig{})

		_, err := km.GetOrCreateKey(ctx)
		require.NoError(t, err)

		entry, found, err := keystore.Get(cryptoDomain.KeyNameDevice)
		require.NoError(t, err)
		require.True(t, found)
		entry.Wrapped[0] ^= 0xff
		require.NoError(t, keystore.Put(entry))

		km.Clear()
		_, err = km.GetOrCreateKey(ctx)
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyLoad)
	})
}

func TestKeyManagerIterations(t *testing.T) {
	t.Run("reports the configured count", func(t *testing.T) {
		km, _, _ := setupKeyManager(t, KeyManagerConfig{KDFIterations: 1000})
		assert.Equal(t, 1000, km.Iterations())
	})

	t.Run("reports the default when unconfigured", func(t *testing.T) {
		km, _, _ := setupKeyManager(t, KeyManagerConfig{})
		assert.Equal(t, 100000, km.Iterations())
	})
}

func TestKeyManagerDeriveKeyFromPassword(t *testing.T) {
	ctx := context.Background()
	km, _, _ := setupKeyManager(t, KeyManagerConfig{KDFIterations: 1000})
	salt := []byte("0123456789abcdef")

	t.Run("derivation is deterministic", func(t *testing.T) {
		key1, err := km.DeriveKeyFromPassword(ctx, "correct horse", salt, 0)
		require.NoError(t, err)
		key2, err := km.DeriveKeyFromPassword(ctx, "correct horse", salt, 0)
		require.NoError(t, err)
		assert.Equal(t, key1.Bytes(), key2.Bytes())
	})

	t.Run("different salt derives a different key", func(t *testing.T) {
		key1, err := km.DeriveKeyFromPassword(ctx, "correct horse", salt, 0)
		require.NoError(t, err)
		key2, err := km.DeriveKeyFromPassword(ctx, "correct horse", []byte("fedcba9876543210"), 0)
		require.NoError(t, err)
		assert.NotEqual(t, key1.Bytes(), key2.Bytes())
	})

	t.Run("explicit iteration count changes the result", func(t *testing.T) {
		key1, err := km.DeriveKeyFromPassword(ctx, "correct horse", salt, 1000)
		require.NoError(t, err)
		key2, err := km.DeriveKeyFromPassword(ctx, "correct horse", salt, 2000)
		require.NoError(t, err)
		assert.NotEqual(t, key1.Bytes(), key2.Bytes())
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		cancelledCtx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := km.DeriveKeyFromPassword(cancelledCtx, "correct horse", salt, 5_000_000)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestKeyManagerEnsurePasswordKey(t *testing.T) {
	ctx := context.Background()

	t.Run("first use creates the check record", func(t *testing.T) {
		km, keystore, _ := setupKeyManager(t, KeyManagerConfig{KDFIterations: 1000})

		key, err := km.EnsurePasswordKey(ctx, "correct horse")
		require.NoError(t, err)
		assert.Len(t, key.Bytes(), cryptoDomain.KeySize)

		entry, found, err := keystore.Get(cryptoDomain.KeyNamePasswordCheck)
		require.NoError(t, err)
		require.True(t, found)
		assert.Len(t, entry.Salt, cryptoDomain.SaltSize)
		assert.Contains(t, entry.Check, cryptoDomain.EncryptedMarker)
	})

	t.Run("correct password verifies against the stored record", func(t *testing.T) {
		keystorePath := filepath.Join(t.TempDir(), "keys.json")
		keystore := cryptoRepository.NewFileKeyStore(keystorePath)

		uri, err := NewBase64KeeperURI()
		require.NoError(t, err)
		keeper, err := NewKeeperService().OpenKeeper(ctx, uri)
		require.NoError(t, err)
		defer func() {
			require.NoError(t, keeper.Close())
		}()

		cfg := KeyManagerConfig{KDFIterations: 1000}
		km1 := NewKeyManager(keystore, keeper, NewAEADManager(), cfg)
		key1, err := km1.EnsurePasswordKey(ctx, "correct horse")
		require.NoError(t, err)

		km2 := NewKeyManager(keystore, keeper, NewAEADManager(), cfg)
		key2, err := km2.EnsurePasswordKey(ctx, "correct horse")
		require.NoError(t, err)
		assert.Equal(t, key1.Bytes(), key2.Bytes())

		km3 := NewKeyManager(keystore, keeper, NewAEADManager(), cfg)
		_, err = km3.EnsurePasswordKey(ctx, "wrong password")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptAuth)
	})

	t.Run("throttles repeated unlock attempts", func(t *testing.T) {
		km, keystore, _ := setupKeyManager(t, KeyManagerConfig{KDFIterations: 1000})
		_, err := km.EnsurePasswordKey(ctx, "correct horse")
		require.NoError(t, err)

		uri, err := NewBase64KeeperURI()
		require.NoError(t, err)
		keeper, err := NewKeeperService().OpenKeeper(ctx, uri)
		require.NoError(t, err)
		defer func() {
			require.NoError(t, keeper.Close())
		}()

		throttled := NewKeyManager(keystore, keeper, NewAEADManager(), KeyManagerConfig{
			KDFIterations:     1000,
			UnlockMaxAttempts: 2,
			UnlockWindow:      time.Minute,
		})

		_, err = throttled.EnsurePasswordKey(ctx, "wrong password")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptAuth)
		_, err = throttled.EnsurePasswordKey(ctx, "wrong password")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptAuth)
		_, err = throttled.EnsurePasswordKey(ctx, "wrong password")
		assert.ErrorIs(t, err, cryptoDomain.ErrTooManyUnlockAttempts)
	})
}

func TestKeyManagerClear(t *testing.T) {
	ctx := context.Background()
	km, _, _ := setupKeyManager(t, KeyManagerConfig{KDFIterations: 1000})

	key1, err := km.GetOrCreateKey(ctx)
	require.NoError(t, err)

	km.Clear()

	key2, err := km.GetOrCreateKey(ctx)
	require.NoError(t, err)
	assert.NotSame(t, key1, key2)
}
