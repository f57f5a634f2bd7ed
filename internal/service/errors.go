package service

import (
	"errors"
	"fmt"
)

// Sentinels the transport layers map to status codes.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrExternalService = errors.New("external service error")
	// ErrNoSourceText means a study artifact was requested for a book with no stored text.
	ErrNoSourceText = errors.New("no source text")
)

// ValidationError names the request field that was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match validation failures.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// WrapError prefixes err with msg. A nil err stays nil.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// externalError tags err as an external service failure while keeping it in the chain.
func externalError(err error, msg string) error {
	return fmt.Errorf("%s: %w: %w", msg, ErrExternalService, err)
}
