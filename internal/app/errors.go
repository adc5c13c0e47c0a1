package app

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected before any upstream call.
	ErrValidation = errors.New("invalid input")
	// ErrFetch wraps upstream failures while loading a view.
	ErrFetch = errors.New("failed to load view")
	// ErrNotFound is returned when a contestant cannot be resolved.
	ErrNotFound = errors.New("contestant not found")
)

// ValidationError carries a human readable message for rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func fetchErr(view string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFetch, view, err)
}
