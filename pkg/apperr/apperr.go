// Package apperr defines the error kinds shared by every storage backend.
//
// A lookup that finds nothing is not an error: repositories report it through
// a boolean result. Only malformed input and an unreachable backend are errors.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input that violates a field constraint.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable marks a persistence layer that could not be reached or timed out.
	ErrUnavailable = errors.New("backend unavailable")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid returns a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Unavailable wraps err so that it matches ErrUnavailable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
