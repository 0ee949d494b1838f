package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBase64KeeperURI(t *testing.T) {
	uri1, err := NewBase64KeeperURI()
	require.NoError(t, err)
	uri2, err := NewBase64KeeperURI()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(uri1, "base64key://"))
	assert.NotEqual(t, uri1, uri2)
}

func TestOpenKeeper(t *testing.T) {
	ctx := context.Background()
	svc := NewKeeperService()

	t.Run("opens a local keeper and wraps material", func(t *testing.T) {
		uri, err := NewBase64KeeperURI()
		require.NoError(t, err)

		keeper, err := svc.OpenKeeper(ctx, uri)
		require.NoError(t, err)
		defer func() {
			require.NoError(t, keeper.Close())
		}()

		plaintext := []byte("device key material")
		wrapped, err := keeper.Encrypt(ctx, plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, wrapped)

		unwrapped, err := keeper.Decrypt(ctx, wrapped)
		require.NoError(t, err)
		assert.Equal(t, plaintext, unwrapped)
	})

	t.Run("fails on unknown scheme", func(t *testing.T) {
		_, err := svc.OpenKeeper(ctx, "bogus://nope")
		assert.Error(t, err)
	})
}
