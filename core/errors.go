package core

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes client errors.
type ErrorCode string

const (
	ErrAuthentication ErrorCode = "authentication"
	ErrService        ErrorCode = "service"
	ErrNotFound       ErrorCode = "not_found"
	ErrTransient      ErrorCode = "transient"
	ErrCanceled       ErrorCode = "canceled"
	ErrUnsupported    ErrorCode = "unsupported"
)

// Error provides typed context for client consumers.
type Error struct {
	Code      ErrorCode
	Message   string
	Status    int
	Retryable bool
	wrapped   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.wrapped)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.wrapped }

// WrapError creates a new Error with the provided code.
func WrapError(err error, code ErrorCode) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Code: code, Message: err.Error(), wrapped: err}
}

// NewError builds an Error explicitly.
func NewError(code ErrorCode, message string, opts ...ErrorOption) *Error {
	e := &Error{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ErrorOption mutates an Error during construction.
type ErrorOption func(*Error)

// WithStatus sets the HTTP status code.
func WithStatus(status int) ErrorOption {
	return func(e *Error) { e.Status = status }
}

// WithRetryable marks whether retry is recommended.
func WithRetryable(retryable bool) ErrorOption {
	return func(e *Error) { e.Retryable = retryable }
}

// WithWrapped attaches an underlying error.
func WithWrapped(err error) ErrorOption {
	return func(e *Error) { e.wrapped = err }
}

// NotFound builds the lookup failure for one entity kind and name.
func NotFound(kind, name string) *Error {
	return &Error{Code: ErrNotFound, Message: fmt.Sprintf("%s %q not found", kind, name)}
}

func classify(code ErrorCode) func(error) bool {
	return func(err error) bool {
		var ce *Error
		if err == nil {
			return false
		}
		if errors.As(err, &ce) {
			return ce.Code == code
		}
		return false
	}
}

// Helper predicates for common error handling patterns.
var (
	IsAuthentication = classify(ErrAuthentication)
	IsService        = classify(ErrService)
	IsNotFound       = classify(ErrNotFound)
	IsTransient      = classify(ErrTransient)
	IsCanceled       = classify(ErrCanceled)
	IsUnsupported    = classify(ErrUnsupported)
)

// StatusOf extracts the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Status
	}
	return 0
}
