// Package fieldcipher implements selective field-level encryption for table
// records.
//
// One Codec serves every write and read path of the store. Historically this
// kind of design splits into a middleware that intercepts standard reads and a
// second manual routine for index-positioned scans; keeping a single shared
// routine removes the possibility of the two paths drifting apart and one of
// them leaking tagged ciphertext to callers.
package fieldcipher

import (
	"context"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/finstore/internal/crypto/domain"
	cryptoService "github.com/allisson/finstore/internal/crypto/service"
	"github.com/allisson/finstore/internal/metrics"
	"github.com/allisson/finstore/internal/schema"
)

// Unreadable is the sentinel substituted for a sensitive field whose stored
// ciphertext fails authentication (wrong key, tampering, corruption).
//
// The failure is scoped to the field: the row and the surrounding query still
// succeed. Callers must render this value distinctly from an absent or empty
// field; the two are not interchangeable. The raw ciphertext stays in the
// engine and is never handed to callers.
const Unreadable = "__UNREADABLE__"

// Codec encrypts and decrypts the sensitive fields of table records.
//
// The sensitive-field configuration comes from the schema registry, which has
// already validated that no sensitive field is indexed. The codec performs no
// locking and never reorders operations; it transforms values in place on the
// record it is handed and forwards nothing.
type Codec struct {
	cipher   cryptoService.AEAD
	registry *schema.Registry
	logger   *slog.Logger
	metrics  metrics.StoreMetrics
}

// NewCodec creates a codec over the given cipher and registry. A nil
// storeMetrics disables decrypt failure counting.
func NewCodec(
	cipher cryptoService.AEAD,
	registry *schema.Registry,
	logger *slog.Logger,
	storeMetrics metrics.StoreMetrics,
) *Codec {
	if storeMetrics == nil {
		storeMetrics = metrics.NewNoOpStoreMetrics()
	}
	return &Codec{cipher: cipher, registry: registry, logger: logger, metrics: storeMetrics}
}

// EncryptValue encrypts a single plaintext value into its tagged stored form.
// Empty values pass through unchanged so absent data stays absent.
func (c *Codec) EncryptValue(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	ciphertext, nonce, err := c.cipher.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt field: %w", err)
	}
	return cryptoDomain.EncryptedField(nonce, ciphertext).Encode(), nil
}

// DecryptValue decrypts a stored value back to plaintext.
//
// The operation is idempotent: values without the encrypted marker pass
// through unchanged, which covers rows persisted before their field was
// marked sensitive and makes double-decryption a no-op. Authentication
// failures and malformed tagged values return ErrDecryptAuth.
func (c *Codec) DecryptValue(stored string) (string, error) {
	value, err := cryptoDomain.ParseFieldValue(stored)
	if err != nil {
		return "", cryptoDomain.ErrDecryptAuth
	}
	if !value.IsEncrypted() {
		return value.Plain(), nil
	}

	enc := value.Encrypted()
	plaintext, err := c.cipher.Decrypt(enc.Ciphertext, enc.Nonce, nil)
	if err != nil {
		return "", cryptoDomain.ErrDecryptAuth
	}
	return string(plaintext), nil
}

// EncryptFields encrypts the named fields of a record in place.
// Fields the record does not have, and empty fields, are skipped.
func (c *Codec) EncryptFields(record schema.Record, fields []string) error {
	for _, field := range fields {
		ref, ok := record.FieldRef(field)
		if !ok || *ref == "" {
			continue
		}

		stored, err := c.EncryptValue(*ref)
		if err != nil {
			return fmt.Errorf("table %s field %s: %w", record.TableName(), field, err)
		}
		*ref = stored
	}
	return nil
}

// DecryptFields decrypts the named fields of a record in place.
//
// A field that fails authentication is replaced with the Unreadable sentinel
// and logged; the record itself is still returned intact. One unreadable
// field never fails a row, and one unreadable row never fails a query.
func (c *Codec) DecryptFields(record schema.Record, fields []string) {
	for _, field := range fields {
		ref, ok := record.FieldRef(field)
		if !ok || *ref == "" {
			continue
		}

		plaintext, err := c.DecryptValue(*ref)
		if err != nil {
			c.logger.Warn("failed to decrypt field, substituting sentinel",
				slog.String("table", record.TableName()),
				slog.String("field", field),
			)
			c.metrics.RecordDecryptFailure(context.Background(), record.TableName(), field)
			*ref = Unreadable
			continue
		}
		*ref = plaintext
	}
}

// EncryptRecord encrypts every configured sensitive field of the record,
// using the registry's sensitive-field set for the record's table.
func (c *Codec) EncryptRecord(record schema.Record) error {
	return c.EncryptFields(record, c.registry.SensitiveFields(record.TableName()))
}

// DecryptRecord decrypts every configured sensitive field of the record.
// Every read path materializes rows through this routine exactly once.
func (c *Codec) DecryptRecord(record schema.Record) {
	c.DecryptFields(record, c.registry.SensitiveFields(record.TableName()))
}

// DecryptRecordStrict decrypts every configured sensitive field and fails on
// the first field that cannot be authenticated, instead of substituting the
// sentinel. Export uses it so corrupt ciphertext never leaves the store
// disguised as a readable value.
func (c *Codec) DecryptRecordStrict(record schema.Record) error {
	for _, field := range c.registry.SensitiveFields(record.TableName()) {
		ref, ok := record.FieldRef(field)
		if !ok || *ref == "" {
			continue
		}

		plaintext, err := c.DecryptValue(*ref)
		if err != nil {
			c.metrics.RecordDecryptFailure(context.Background(), record.TableName(), field)
			return fmt.Errorf("table %s field %s: %w", record.TableName(), field, err)
		}
		*ref = plaintext
	}
	return nil
}
