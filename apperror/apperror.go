// Package apperror defines the error kinds shared by all services. Services
// return *Error values and never write HTTP responses; the controllers map
// the kind to a status code at the boundary.
package apperror

import (
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	Internal Kind = iota
	Validation
	Auth
	Forbidden
	NotFound
)

// FieldError describes a single invalid input field. Validation errors carry
// a list of these, serialized as the `data` member of the error body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the tagged error type returned by service operations.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the error kind to an HTTP status code. Anything unclassified
// defaults to 500.
func (e *Error) Status() int {
	switch e.Kind {
	case Validation:
		return http.StatusUnprocessableEntity
	case Auth:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewValidation builds a validation error with field-level details.
func NewValidation(message string, fields ...FieldError) *Error {
	return &Error{Kind: Validation, Message: message, Fields: fields}
}

// NewAuth builds an authentication error (bad credentials, bad token).
func NewAuth(message string) *Error {
	return &Error{Kind: Auth, Message: message}
}

// NewForbidden builds an ownership-violation error.
func NewForbidden(message string) *Error {
	return &Error{Kind: Forbidden, Message: message}
}

// NewNotFound builds a missing-resource error.
func NewNotFound(message string) *Error {
	return &Error{Kind: NotFound, Message: message}
}

// NewInternal wraps an unexpected failure.
func NewInternal(message string, err error) *Error {
	return &Error{Kind: Internal, Message: message, Err: err}
}

// From coerces any error into an *Error, defaulting to Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*Error); ok {
		return ae
	}
	return NewInternal("internal server error", err)
}
