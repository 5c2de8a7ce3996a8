// Package apperror defines the error taxonomy shared by every failure path.
// Services and handlers raise these; the api package renders them, so there
// is exactly one conversion-to-response policy.
package apperror

import (
	"errors"
	"net/http"
)

type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func BadRequest(message string) *Error { return New(http.StatusBadRequest, message) }

func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }

func NotFound(message string) *Error { return New(http.StatusNotFound, message) }

func Conflict(message string) *Error { return New(http.StatusConflict, message) }

func Internal(message string) *Error { return New(http.StatusInternalServerError, message) }

// From extracts the typed error from err, defaulting to a 500 so unknown
// failures never leak details to the client.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal server error")
}
