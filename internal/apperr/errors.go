// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput is a client mistake; the message names the field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMethodNotAllowed is returned for unsupported HTTP methods.
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrStorageUnavailable covers unreachable stores, failed writes and timeouts.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStorageConflict means an optimistic update kept colliding.
	ErrStorageConflict = errors.New("storage conflict")
)

// InputError describes one invalid request field.
type InputError struct {
	Field   string
	Message string
}

// Invalid creates an InputError for field.
func Invalid(field, message string) *InputError {
	return &InputError{Field: field, Message: message}
}

func (e *InputError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// HTTPStatus maps an error to its response status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
