// Package apierror provides standardized error types and response structures
// for the API. All errors returned to clients go through this package to
// ensure consistency and to prevent leaking internal details (stack traces,
// DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error for HTTP mapping and logging.
type Kind int

const (
	// KindValidation — malformed or missing input, caught before any write.
	KindValidation Kind = iota
	// KindInvalidState — operation not legal for the entity's current status.
	KindInvalidState
	// KindQuantityExceeded — request exceeds the available/returnable quantity.
	KindQuantityExceeded
	// KindSequenceExhausted — transaction-number retries exhausted.
	KindSequenceExhausted
	// KindConflict — unique-constraint violation not resolved by retry.
	KindConflict
	// KindInternal — unexpected persistence failure; message hidden from clients.
	KindInternal
)

// Error is the canonical domain error. Message is safe to surface for every
// kind except KindInternal, where clients get a generic retry prompt.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func QuantityExceeded(format string, args ...interface{}) *Error {
	return &Error{Kind: KindQuantityExceeded, Message: fmt.Sprintf(format, args...)}
}

func SequenceExhausted(err error) *Error {
	return &Error{Kind: KindSequenceExhausted, Message: "could not allocate a transaction number, please try again", Err: err}
}

func Conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf extracts the kind from any error; non-*Error values are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-safe message for err. Internal errors always
// collapse to a generic retry prompt — raw error text never reaches clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error, please try again"
}

// HTTPStatus maps an error to its response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindInvalidState, KindQuantityExceeded, KindConflict:
		return http.StatusConflict
	case KindSequenceExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}
