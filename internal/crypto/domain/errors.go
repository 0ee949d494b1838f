package domain

import (
	"github.com/allisson/finstore/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is
	// not supported. Supported algorithms: AESGCM (AES-256-GCM), ChaCha20
	// (ChaCha20-Poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	// All keys must be exactly 32 bytes (256 bits).
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptAuth indicates an AEAD decryption failed its authentication
	// check: wrong key, tampered ciphertext, corrupted data, or an invalid
	// nonce. The specific cause is deliberately not disclosed. Decryption
	// never returns a wrong plaintext; it returns this error instead.
	ErrDecryptAuth = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrKeyLoad indicates persisted wrapped-key material is corrupt or
	// unparseable. Data already encrypted under the lost key is unrecoverable;
	// there is no escrow by design.
	ErrKeyLoad = errors.New("stored key material is corrupt or unreadable")

	// ErrMalformedField indicates a stored field value carries the encrypted
	// marker but its components cannot be parsed.
	ErrMalformedField = errors.Wrap(errors.ErrInvalidInput, "malformed encrypted field")

	// ErrTooManyUnlockAttempts indicates password unlock attempts exceeded the
	// configured throttle window.
	ErrTooManyUnlockAttempts = errors.New("too many unlock attempts")
)
