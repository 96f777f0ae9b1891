package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	TypeValidation   ErrorType = "VALIDATION"
	TypeBadRequest   ErrorType = "BAD_REQUEST"
	TypeDuplicate    ErrorType = "DUPLICATE"
	TypeUnauthorized ErrorType = "UNAUTHORIZED"
	TypeForbidden    ErrorType = "FORBIDDEN"
	TypeNotFound     ErrorType = "NOT_FOUND"
	TypeRateLimit    ErrorType = "RATE_LIMIT"
	TypeUnavailable  ErrorType = "UNAVAILABLE"
	TypeInternal     ErrorType = "INTERNAL"
)

// AppError is an error that knows how it should be rendered over HTTP.
type AppError struct {
	Type       ErrorType
	Message    string
	Fields     map[string]string
	Header     http.Header
	Cause      error
	HTTPStatus int
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func (e *AppError) WithFields(fields map[string]string) *AppError {
	e.Fields = fields
	return e
}

func (e *AppError) WithHeader(key, value string) *AppError {
	if e.Header == nil {
		e.Header = http.Header{}
	}
	e.Header.Set(key, value)
	return e
}

func newError(t ErrorType, status int, message string) *AppError {
	return &AppError{Type: t, Message: message, HTTPStatus: status}
}

// Validation is malformed input that parsed but broke a rule.
func Validation(message string) *AppError {
	return newError(TypeValidation, http.StatusUnprocessableEntity, message)
}

// BadRequest is input that could not be parsed at all.
func BadRequest(message string) *AppError {
	return newError(TypeBadRequest, http.StatusBadRequest, message)
}

func Duplicate(message string) *AppError {
	return newError(TypeDuplicate, http.StatusBadRequest, message)
}

func Unauthorized(message string) *AppError {
	return newError(TypeUnauthorized, http.StatusUnauthorized, message).
		WithHeader("WWW-Authenticate", "Bearer")
}

func Forbidden(message string) *AppError {
	return newError(TypeForbidden, http.StatusForbidden, message)
}

func NotFound(message string) *AppError {
	return newError(TypeNotFound, http.StatusNotFound, message)
}

func RateLimited(message string) *AppError {
	return newError(TypeRateLimit, http.StatusTooManyRequests, message)
}

func Unavailable(message string) *AppError {
	return newError(TypeUnavailable, http.StatusServiceUnavailable, message)
}

func Internal(err error) *AppError {
	return newError(TypeInternal, http.StatusInternalServerError, "Internal server error").WithCause(err)
}

// From returns the AppError inside err, or wraps err as an internal error.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

func Is(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

func IsNotFound(err error) bool     { return Is(err, TypeNotFound) }
func IsForbidden(err error) bool    { return Is(err, TypeForbidden) }
func IsUnauthorized(err error) bool { return Is(err, TypeUnauthorized) }
