package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used across the mutation pipeline. InvariantViolation and
// TransientStoreError always roll the enclosing transaction back.
const (
	CodeNotFound            = "not_found"
	CodeAlreadyExists       = "already_exists"
	CodeInvariantViolation  = "invariant_violation"
	CodeTransientStoreError = "transient_store_error"
	CodeUnauthorized        = "unauthorized"
	CodeBadRequest          = "bad_request"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func AlreadyExists(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeAlreadyExists, fmt.Errorf(format, args...))
}

func InvariantViolation(format string, args ...interface{}) *Error {
	return New(http.StatusInternalServerError, CodeInvariantViolation, fmt.Errorf(format, args...))
}

func TransientStore(err error) *Error {
	return New(http.StatusServiceUnavailable, CodeTransientStoreError, err)
}

func BadRequest(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, fmt.Errorf(format, args...))
}

func Unauthorized(format string, args ...interface{}) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, fmt.Errorf(format, args...))
}

func IsCode(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// StatusOf maps any error to an HTTP status, defaulting to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the error's code, or empty for plain errors.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
