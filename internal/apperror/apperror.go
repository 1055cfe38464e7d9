// Package apperror defines the error kinds raised while loading, filtering and
// aggregating rental data. Callers classify errors with errors.Is against the
// sentinel kinds.
package apperror

import (
	"errors"
	"fmt"
)

// Error kinds
var (
	ErrNotFound      = errors.New("not found")
	ErrMalformed     = errors.New("malformed data")
	ErrMissingColumn = errors.New("missing column")
	ErrLookup        = errors.New("lookup failed")
	ErrType          = errors.New("type mismatch")
	ErrInvalidInput  = errors.New("invalid input")
)

// Error carries the kind, the module it came from and an optional cause.
type Error struct {
	Kind    error
	Module  string
	Message string
	Err     error
}

// New creates an Error without an underlying cause
func New(kind error, module, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Module:  module,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error around an underlying cause
func Wrap(kind error, module string, err error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Module:  module,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Module, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the cause for errors.Is / errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's kind
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// IsUserError reports whether err can be corrected by changing the request
func IsUserError(err error) bool {
	return errors.Is(err, ErrLookup) || errors.Is(err, ErrType) || errors.Is(err, ErrInvalidInput)
}
