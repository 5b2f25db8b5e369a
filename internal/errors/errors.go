// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by use cases
// and mapped to appropriate HTTP status codes by handlers.
package errors

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a concurrent mutation lost a race or a duplicate key was written.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated principal doesn't have permission.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable indicates a backing store timed out or could not be reached.
	// Callers may retry.
	ErrUnavailable = errors.New("unavailable")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// codedError carries a machine-readable kind alongside the wrapped sentinel.
type codedError struct {
	err     error
	message string
	code    string
}

func (e *codedError) Error() string { return e.message + ": " + e.err.Error() }

func (e *codedError) Unwrap() error { return e.err }

// WrapWithCode is like Wrap and also tags the error with code, reported to API
// clients next to the sentinel's generic kind.
func WrapWithCode(err error, message, code string) error {
	if err == nil {
		return nil
	}
	return &codedError{err: err, message: message, code: code}
}

// Code returns the code of the outermost coded error in err's chain, or "".
func Code(err error) string {
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code
	}
	return ""
}

// Wrapf is like Wrap but formats the message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsTransient reports whether err is a timeout or connectivity failure of a
// backing store, as opposed to a business error.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Unavailable wraps err with ErrUnavailable when it is transient and with the
// message otherwise. The original cause stays in the chain for logging.
func Unavailable(err error, message string) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) && !errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", message, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", message, err)
}
