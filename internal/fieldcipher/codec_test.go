package fieldcipher

import (
	"context"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/finstore/internal/crypto/domain"
	cryptoService "github.com/allisson/finstore/internal/crypto/service"
	financeDomain "github.com/allisson/finstore/internal/finance/domain"
	"github.com/allisson/finstore/internal/metrics"
	"github.com/allisson/finstore/internal/schema"
	"github.com/allisson/finstore/internal/testutil"
)

func setupCodec(t *testing.T) *Codec {
	t.Helper()

	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := cryptoService.NewAEADManager().CreateCipher(key, cryptoDomain.AESGCM)
	require.NoError(t, err)

	registry, err := schema.NewRegistry(schema.Versions())
	require.NoError(t, err)

	return NewCodec(cipher, registry, testutil.Logger(), nil)
}

// countingMetrics records decrypt failures for assertions.
type countingMetrics struct {
	metrics.NoOpStoreMetrics
	failures []string
}

func (c *countingMetrics) RecordDecryptFailure(_ context.Context, table, field string) {
	c.failures = append(c.failures, table+"."+field)
}

func TestCodecEncryptValue(t *testing.T) {
	codec := setupCodec(t)

	t.Run("produces a tagged value", func(t *testing.T) {
		stored, err := codec.EncryptValue("coffee at the corner shop")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stored, cryptoDomain.EncryptedMarker+":"))
		assert.NotContains(t, stored, "coffee")
	})

	t.Run("empty value passes through", func(t *testing.T) {
		stored, err := codec.EncryptValue("")
		require.NoError(t, err)
		assert.Equal(t, "", stored)
	})
}

func TestCodecDecryptValue(t *testing.T) {
	codec := setupCodec(t)

	t.Run("round trips an encrypted value", func(t *testing.T) {
		stored, err := codec.EncryptValue("coffee at the corner shop")
		require.NoError(t, err)

		plaintext, err := codec.DecryptValue(stored)
		require.NoError(t, err)
		assert.Equal(t, "coffee at the corner shop", plaintext)
	})

	t.Run("untagged value passes through unchanged", func(t *testing.T) {
		plaintext, err := codec.DecryptValue("legacy plaintext")
		require.NoError(t, err)
		assert.Equal(t, "legacy plaintext", plaintext)
	})

	t.Run("double decryption is a no-op", func(t *testing.T) {
		stored, err := codec.EncryptValue("idempotent")
		require.NoError(t, err)

		once, err := codec.DecryptValue(stored)
		require.NoError(t, err)
		twice, err := codec.DecryptValue(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})

	t.Run("value encrypted under another key fails", func(t *testing.T) {
		other := setupCodec(t)
		stored, err := other.EncryptValue("sealed elsewhere")
		require.NoError(t, err)

		_, err = codec.DecryptValue(stored)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptAuth)
	})

	t.Run("malformed tagged value fails", func(t *testing.T) {
		_, err := codec.DecryptValue("__ENC__:!!!:!!!")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptAuth)
	})
}

func TestCodecEncryptRecord(t *testing.T) {
	codec := setupCodec(t)

	t.Run("encrypts only the sensitive fields", func(t *testing.T) {
		transaction := &financeDomain.Transaction{
			ID:          "tx-1",
			Kind:        financeDomain.KindExpense,
			Category:    "groceries",
			AmountCents: 4250,
			OccurredAt:  time.Now().UTC(),
			Description: "weekly shop",
			Merchant:    "corner market",
		}

		require.NoError(t, codec.EncryptRecord(transaction))

		assert.True(t, strings.HasPrefix(transaction.Description, cryptoDomain.EncryptedMarker))
		assert.True(t, strings.HasPrefix(transaction.Merchant, cryptoDomain.EncryptedMarker))
		assert.Equal(t, "groceries", transaction.Category)
		assert.Equal(t, "tx-1", transaction.ID)
	})

	t.Run("skips empty sensitive fields", func(t *testing.T) {
		transaction := &financeDomain.Transaction{Description: "", Merchant: ""}
		require.NoError(t, codec.EncryptRecord(transaction))
		assert.Equal(t, "", transaction.Description)
		assert.Equal(t, "", transaction.Merchant)
	})

	t.Run("skips fields the record does not carry", func(t *testing.T) {
		patch := &financeDomain.TransactionPatch{}
		require.NoError(t, codec.EncryptRecord(patch))
	})
}

func TestCodecDecryptRecord(t *testing.T) {
	codec := setupCodec(t)

	t.Run("restores sensitive fields to plaintext", func(t *testing.T) {
		transaction := &financeDomain.Transaction{
			Description: "weekly shop",
			Merchant:    "corner market",
		}
		require.NoError(t, codec.EncryptRecord(transaction))

		codec.DecryptRecord(transaction)
		assert.Equal(t, "weekly shop", transaction.Description)
		assert.Equal(t, "corner market", transaction.Merchant)
	})

	t.Run("legacy plaintext fields pass through", func(t *testing.T) {
		transaction := &financeDomain.Transaction{
			Description: "written before encryption",
			Merchant:    "plain merchant",
		}

		codec.DecryptRecord(transaction)
		assert.Equal(t, "written before encryption", transaction.Description)
		assert.Equal(t, "plain merchant", transaction.Merchant)
	})

	t.Run("unreadable field gets the sentinel, rest of the row survives", func(t *testing.T) {
		other := setupCodec(t)
		transaction := &financeDomain.Transaction{
			Description: "sealed under a lost key",
			Merchant:    "still readable",
		}
		require.NoError(t, other.EncryptRecord(transaction))

		// Re-encrypt merchant under the codec's own key so only description fails.
		merchant, err := other.DecryptValue(transaction.Merchant)
		require.NoError(t, err)
		transaction.Merchant, err = codec.EncryptValue(merchant)
		require.NoError(t, err)

		codec.DecryptRecord(transaction)
		assert.Equal(t, Unreadable, transaction.Description)
		assert.Equal(t, "still readable", transaction.Merchant)
	})

	t.Run("strict mode fails instead of substituting the sentinel", func(t *testing.T) {
		other := setupCodec(t)
		transaction := &financeDomain.Transaction{
			Description: "sealed under a lost key",
			Merchant:    "plain merchant",
		}
		require.NoError(t, other.EncryptRecord(transaction))

		err := codec.DecryptRecordStrict(transaction)
		require.ErrorIs(t, err, cryptoDomain.ErrDecryptAuth)
		assert.Contains(t, err.Error(), "description")
		assert.NotContains(t, transaction.Description, Unreadable)
	})

	t.Run("strict mode decrypts a readable record", func(t *testing.T) {
		transaction := &financeDomain.Transaction{
			Description: "weekly shop",
			Merchant:    "legacy plaintext merchant",
		}
		require.NoError(t, codec.EncryptFields(transaction, []string{"description"}))

		require.NoError(t, codec.DecryptRecordStrict(transaction))
		assert.Equal(t, "weekly shop", transaction.Description)
		assert.Equal(t, "legacy plaintext merchant", transaction.Merchant)
	})

	t.Run("decrypt failures are counted", func(t *testing.T) {
		other := setupCodec(t)
		transaction := &financeDomain.Transaction{Description: "sealed under a lost key"}
		require.NoError(t, other.EncryptRecord(transaction))

		counter := &countingMetrics{}
		counting := NewCodec(codec.cipher, codec.registry, testutil.Logger(), counter)

		counting.DecryptRecord(transaction)
		assert.Equal(t, []string{"transactions.description"}, counter.failures)
	})
}
