package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a request parameter is rejected.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when no catalog record has the requested id.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when nix search fails and no local
	// results can stand in for it.
	ErrExternalService = errors.New("external service error")
)

// ValidationError names the request parameter that was rejected. It matches
// ErrInvalidInput under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// notFound reports a missing app id.
func notFound(id string) error {
	return fmt.Errorf("app %q: %w", id, ErrNotFound)
}
