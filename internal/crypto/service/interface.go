// Package service provides the cryptographic services of the encrypted store:
// AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), device-key wrapping through a
// gocloud.dev secrets keeper, and key lifecycle management for the two
// independent key modes (device key, password-derived key).
package service

import (
	"context"

	cryptoDomain "github.com/allisson/finstore/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Keeper wraps and unwraps exported key material. gocloud.dev's
// *secrets.Keeper satisfies this interface.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KeyStore persists wrapped-key records. It is a plain local key-value
// artifact, independent from the table engine; see the crypto repository.
type KeyStore interface {
	// Get returns the entry with the given name, reporting whether it exists.
	Get(name string) (*cryptoDomain.KeyEntry, bool, error)

	// Put stores or replaces the entry with the given name.
	Put(entry *cryptoDomain.KeyEntry) error

	// Delete removes the entry with the given name. Missing entries are not an error.
	Delete(name string) error
}

// KeyManager manages the two key modes of the store.
type KeyManager interface {
	// GetOrCreateKey returns the device key, loading and unwrapping the
	// persisted form or generating and persisting a new one.
	GetOrCreateKey(ctx context.Context) (*cryptoDomain.EncryptionKey, error)

	// DeriveKeyFromPassword deterministically derives a key from a password
	// and salt. Iterations <= 0 selects the configured count. Used only for
	// whole-state-blob encryption.
	DeriveKeyFromPassword(ctx context.Context, password string, salt []byte, iterations int) (*cryptoDomain.EncryptionKey, error)

	// EnsurePasswordKey derives the password key and creates or verifies the
	// persisted password-check record.
	EnsurePasswordKey(ctx context.Context, password string) (*cryptoDomain.EncryptionKey, error)

	// Iterations reports the effective PBKDF2 iteration count used when a
	// caller does not supply one.
	Iterations() int

	// Clear zeroes and drops both cached keys (sign-out).
	Clear()
}
