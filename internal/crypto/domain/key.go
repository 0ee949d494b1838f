// Package domain defines the core cryptographic model for the encrypted store:
// key handles, the field-value tagged union, and the error taxonomy shared by
// every encryption path.
package domain

import (
	"crypto/rand"
	"fmt"
)

// EncryptionKey is an opaque handle to a 256-bit symmetric key.
//
// The raw bytes live in memory for the duration of a session only. Keys are
// persisted exclusively in wrapped/exported form; see the crypto repository.
// Call Clear when the session ends so the material does not outlive sign-out.
type EncryptionKey struct {
	bytes []byte
}

// NewEncryptionKey wraps existing key material in a handle.
// The material must be exactly KeySize bytes.
func NewEncryptionKey(material []byte) (*EncryptionKey, error) {
	if len(material) != KeySize {
		return nil, ErrInvalidKeySize
	}
	return &EncryptionKey{bytes: material}, nil
}

// GenerateEncryptionKey creates a new random 256-bit key.
func GenerateEncryptionKey() (*EncryptionKey, error) {
	material := make([]byte, KeySize)
	if _, err := rand.Read(material); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &EncryptionKey{bytes: material}, nil
}

// Bytes returns the raw key material. Callers must not retain or persist it.
func (k *EncryptionKey) Bytes() []byte {
	return k.bytes
}

// Clear zeroes the key material and invalidates the handle.
func (k *EncryptionKey) Clear() {
	Zero(k.bytes)
	k.bytes = nil
}

// String implements fmt.Stringer and never exposes key material.
func (k *EncryptionKey) String() string {
	return "EncryptionKey(redacted)"
}

// NewSalt generates a random salt for password-based key derivation.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
