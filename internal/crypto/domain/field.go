package domain

import (
	"encoding/base64"
	"strings"
)

// EncryptedMarker is the reserved prefix that distinguishes an encrypted
// field's stored value from plaintext. The full stored form is
// "__ENC__:<base64 nonce>:<base64 ciphertext>". The marker convention exists
// only at this serialization boundary; everything above it works with
// FieldValue.
const EncryptedMarker = "__ENC__"

// FieldValue is the value of a table field as read from or written to the
// engine: either plaintext or an encrypted payload. Modeling the two states
// explicitly keeps "is this ciphertext?" decisions out of string comparisons
// scattered through the read paths.
type FieldValue struct {
	plain string
	enc   *EncryptedValue
}

// EncryptedValue holds the decoded components of an encrypted field.
type EncryptedValue struct {
	Nonce      []byte
	Ciphertext []byte
}

// PlainField creates a FieldValue holding plaintext.
func PlainField(s string) FieldValue {
	return FieldValue{plain: s}
}

// EncryptedField creates a FieldValue holding an encrypted payload.
func EncryptedField(nonce, ciphertext []byte) FieldValue {
	return FieldValue{enc: &EncryptedValue{Nonce: nonce, Ciphertext: ciphertext}}
}

// IsEncrypted reports whether the value holds an encrypted payload.
func (f FieldValue) IsEncrypted() bool {
	return f.enc != nil
}

// Plain returns the plaintext. Valid only when IsEncrypted is false.
func (f FieldValue) Plain() string {
	return f.plain
}

// Encrypted returns the encrypted payload. Valid only when IsEncrypted is true.
func (f FieldValue) Encrypted() *EncryptedValue {
	return f.enc
}

// Encode serializes the value to its stored string form: plaintext unchanged,
// encrypted payloads as "__ENC__:<base64 nonce>:<base64 ciphertext>".
func (f FieldValue) Encode() string {
	if f.enc == nil {
		return f.plain
	}
	return EncryptedMarker + ":" +
		base64.StdEncoding.EncodeToString(f.enc.Nonce) + ":" +
		base64.StdEncoding.EncodeToString(f.enc.Ciphertext)
}

// ParseFieldValue parses a stored field value.
//
// Values without the marker prefix are plaintext and pass through unchanged;
// this covers rows written before a field was marked sensitive. Values with
// the marker must decode into exactly a nonce and a ciphertext, otherwise
// ErrMalformedField is returned.
func ParseFieldValue(stored string) (FieldValue, error) {
	if !strings.HasPrefix(stored, EncryptedMarker+":") {
		return PlainField(stored), nil
	}

	parts := strings.SplitN(stored, ":", 3)
	if len(parts) != 3 {
		return FieldValue{}, ErrMalformedField
	}

	nonce, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return FieldValue{}, ErrMalformedField
	}
	ciphertext, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return FieldValue{}, ErrMalformedField
	}

	return EncryptedField(nonce, ciphertext), nil
}
