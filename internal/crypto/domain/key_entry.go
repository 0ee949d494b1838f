package domain

import (
	"time"
)

// Fixed entry names, one per key mode.
const (
	// KeyNameDevice is the keystore entry holding the wrapped device key.
	KeyNameDevice = "device-key"

	// KeyNamePasswordCheck is the keystore entry holding the salt and AEAD
	// check value for the password-derived key mode.
	KeyNamePasswordCheck = "password-check"
)

// KeyEntry is a persisted wrapped-key record.
//
// Entries hold only exported/wrapped material and public parameters (salts are
// unique, not secret). Unwrapped key bytes never reach the keystore.
type KeyEntry struct {
	// Name is the fixed entry name (KeyNameDevice or KeyNamePasswordCheck).
	Name string `json:"name"`
	// Wrapped is the device key material encrypted by the configured keeper.
	// Empty for password-check entries.
	Wrapped []byte `json:"wrapped,omitempty"`
	// Salt is the KDF salt for password-check entries.
	Salt []byte `json:"salt,omitempty"`
	// Check is the serialized AEAD check value for password-check entries,
	// in the same tagged form used for encrypted table fields.
	Check string `json:"check,omitempty"`
	// CreatedAt is the UTC timestamp when the entry was first written.
	CreatedAt time.Time `json:"created_at"`
}
