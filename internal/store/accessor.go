package store

import (
	"github.com/google/uuid"

	apperrors "github.com/allisson/finstore/internal/errors"
	"github.com/allisson/finstore/internal/fieldcipher"
	"github.com/allisson/finstore/internal/schema"
	appvalidation "github.com/allisson/finstore/internal/validation"
)

// newID generates a time-ordered unique identifier for a new record.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", apperrors.Wrap(err, "failed to generate id")
	}
	return id.String(), nil
}

// invalidInput wraps a validation failure in the invalid-input sentinel.
func invalidInput(err error) error {
	return appvalidation.WrapValidationError(err)
}

// sealPatched prepares the stored form of an updated record.
//
// Only sensitive fields the patch actually touched are re-encrypted; for the
// rest the original ciphertext from the raw row is kept byte for byte. This
// keeps an update from re-sealing a field that decrypted to the unreadable
// sentinel, which would destroy the original ciphertext.
func sealPatched(codec *fieldcipher.Codec, fields []string, raw, stored, patch schema.Record) error {
	for _, field := range fields {
		storedRef, ok := stored.FieldRef(field)
		if !ok {
			continue
		}

		if patchRef, ok := patch.FieldRef(field); ok {
			sealed, err := codec.EncryptValue(*patchRef)
			if err != nil {
				return err
			}
			*storedRef = sealed
			continue
		}

		if rawRef, ok := raw.FieldRef(field); ok {
			*storedRef = *rawRef
		}
	}
	return nil
}
