// Package errors defines the wire-level error envelope of the API.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the standard error shape returned by every endpoint.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // original cause, for logs only
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail returns a copy carrying extra detail; the base vars below stay
// immutable.
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithCause returns a copy wrapping the original error.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// FromError coerces any error into an AppError, defaulting to a generic 500
// so internals never leak to clients.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

var (
	ErrBadRequest = &AppError{
		HTTPStatus: http.StatusBadRequest, Code: "bad_request", Message: "invalid request",
	}
	ErrInvalidJSON = &AppError{
		HTTPStatus: http.StatusBadRequest, Code: "invalid_json", Message: "request body is not valid JSON",
	}
	ErrUnauthorized = &AppError{
		HTTPStatus: http.StatusUnauthorized, Code: "unauthorized", Message: "authentication required or failed",
	}
	ErrTokenMissing = &AppError{
		HTTPStatus: http.StatusUnauthorized, Code: "token_missing", Message: "missing bearer token",
	}
	ErrTokenInvalid = &AppError{
		HTTPStatus: http.StatusUnauthorized, Code: "token_invalid", Message: "invalid or expired token",
	}
	ErrForbidden = &AppError{
		HTTPStatus: http.StatusForbidden, Code: "forbidden", Message: "insufficient permissions",
	}
	ErrNotFound = &AppError{
		HTTPStatus: http.StatusNotFound, Code: "not_found", Message: "resource not found",
	}
	ErrMethodNotAllowed = &AppError{
		HTTPStatus: http.StatusMethodNotAllowed, Code: "method_not_allowed", Message: "method not allowed",
	}
	ErrConflict = &AppError{
		HTTPStatus: http.StatusConflict, Code: "conflict", Message: "resource already exists",
	}
	ErrInternal = &AppError{
		HTTPStatus: http.StatusInternalServerError, Code: "internal_error", Message: "internal server error",
	}
	ErrServiceUnavailable = &AppError{
		HTTPStatus: http.StatusServiceUnavailable, Code: "service_unavailable", Message: "service temporarily unavailable",
	}
)
