// Package apperror holds the error kinds shared by every layer of the service.
// Callers wrap a kind with context and match it with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
	ErrConfiguration  = errors.New("configuration error")
)

// Error pairs a kind with a message that is safe to return to clients.
type Error struct {
	Kind    error
	Message string
	Field   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Kind }

// New builds an *Error of the given kind.
func New(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// WithField builds an *Error that names the offending input field.
func WithField(kind error, field, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Field: field}
}

// Message returns the client-facing message carried by err, or def when err
// carries none.
func Message(err error, def string) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return def
}

// FieldOf returns the field name carried by err, if any.
func FieldOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Field
	}
	return ""
}
