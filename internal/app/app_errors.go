package app

import (
	"errors"
	"fmt"
)

// Error kinds the HTTP and MCP surfaces translate into status codes and
// tool results.
var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("resource not found")
	ErrInternalError = errors.New("internal error")
	ErrAlreadyExists = errors.New("resource already exists")
)

// ValidationError names the input field a reminder or category write
// rejected. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError reports whether err was caused by caller input rather
// than by the store or the notification facility.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
