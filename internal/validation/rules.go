// Package validation provides custom validation rules for the application.
package validation

import (
	"fmt"
	"regexp"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/finstore/internal/errors"
)

// periodRegex matches budget periods in "YYYY-MM" form.
var periodRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
}

// Period validates that a string is a monthly period in "YYYY-MM" form.
var Period = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_period_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if !periodRegex.MatchString(s) {
		return validation.NewError("validation_period", "must be a period in YYYY-MM form")
	}
	return nil
})

// PasswordStrength validates that an export password meets minimum
// requirements before it is fed into key derivation.
type PasswordStrength struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireNumber bool
}

// Validate checks if the password meets the configured requirements.
func (p PasswordStrength) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}

	if len(s) < p.MinLength {
		return validation.NewError(
			"validation_password_min_length",
			fmt.Sprintf("password must be at least %d characters", p.MinLength),
		)
	}
	if p.RequireUpper && !hasRune(s, unicode.IsUpper) {
		return validation.NewError(
			"validation_password_uppercase",
			"password must contain at least one uppercase letter",
		)
	}
	if p.RequireLower && !hasRune(s, unicode.IsLower) {
		return validation.NewError(
			"validation_password_lowercase",
			"password must contain at least one lowercase letter",
		)
	}
	if p.RequireNumber && !hasRune(s, unicode.IsNumber) {
		return validation.NewError("validation_password_number", "password must contain at least one number")
	}

	return nil
}

func hasRune(s string, match func(rune) bool) bool {
	for _, r := range s {
		if match(r) {
			return true
		}
	}
	return false
}
