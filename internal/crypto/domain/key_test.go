package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncryptionKey(t *testing.T) {
	t.Run("accepts 32-byte material", func(t *testing.T) {
		material := bytes.Repeat([]byte{0x42}, KeySize)
		key, err := NewEncryptionKey(material)
		require.NoError(t, err)
		assert.Equal(t, material, key.Bytes())
	})

	t.Run("rejects short material", func(t *testing.T) {
		_, err := NewEncryptionKey(make([]byte, 16))
		assert.ErrorIs(t, err, ErrInvalidKeySize)
	})

	t.Run("rejects long material", func(t *testing.T) {
		_, err := NewEncryptionKey(make([]byte, 64))
		assert.ErrorIs(t, err, ErrInvalidKeySize)
	})
}

func TestGenerateEncryptionKey(t *testing.T) {
	key1, err := GenerateEncryptionKey()
	require.NoError(t, err)
	key2, err := GenerateEncryptionKey()
	require.NoError(t, err)

	assert.Len(t, key1.Bytes(), KeySize)
	assert.NotEqual(t, key1.Bytes(), key2.Bytes())
}

func TestEncryptionKeyClear(t *testing.T) {
	key, err := GenerateEncryptionKey()
	require.NoError(t, err)

	material := key.Bytes()
	key.Clear()

	assert.Nil(t, key.Bytes())
	assert.Equal(t, bytes.Repeat([]byte{0x00}, KeySize), material)
}

func TestEncryptionKeyString(t *testing.T) {
	key, err := GenerateEncryptionKey()
	require.NoError(t, err)
	assert.Equal(t, "EncryptionKey(redacted)", key.String())
}

func TestNewSalt(t *testing.T) {
	salt1, err := NewSalt()
	require.NoError(t, err)
	salt2, err := NewSalt()
	require.NoError(t, err)

	assert.Len(t, salt1, SaltSize)
	assert.NotEqual(t, salt1, salt2)
}
