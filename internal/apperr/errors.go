// Package apperr defines the error kinds every request can terminate with.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors. Handlers and stores wrap these; the response layer maps
// them to HTTP status codes with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("permission denied")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// Error wraps a sentinel error with a caller-visible message.
type Error struct {
	Err     error
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying sentinel for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Invalid returns a validation error with the given message.
func Invalid(format string, args ...any) error {
	return &Error{Err: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated returns an authentication error with the given message.
func Unauthenticated(msg string) error {
	return &Error{Err: ErrUnauthenticated, Message: msg}
}

// Forbidden returns a permission error with the given message.
func Forbidden(msg string) error {
	return &Error{Err: ErrForbidden, Message: msg}
}

// NotFound returns a not-found error with the given message.
func NotFound(msg string) error {
	return &Error{Err: ErrNotFound, Message: msg}
}

// Conflict returns a conflict error with the given message.
func Conflict(msg string) error {
	return &Error{Err: ErrConflict, Message: msg}
}

// Message returns the caller-visible message of err, falling back to the
// sentinel text when err carries none.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return e.Err.Error()
	}
	return err.Error()
}
