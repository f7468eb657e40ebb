package errors

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable the backing medium is unreachable or an I/O call failed
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrValidation matches every *ValidationError via errors.Is
var ErrValidation = errors.New("validation failed")

// ValidationError a required field is missing or malformed
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports ErrValidation as a match
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Required returns the validation error for an empty required field
func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "is required"}
}

// Unavailable wraps a medium failure so that it matches ErrStorageUnavailable
// while keeping the underlying cause reachable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
