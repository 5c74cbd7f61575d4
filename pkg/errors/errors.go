package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a standardized, stable error classification independent of message text.
type Code string

const (
	CodeNotFound        Code = "NOT_FOUND"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeConflict        Code = "CONFLICT"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeInternal        Code = "INTERNAL"
)

// AppError is the structured error type used throughout the system. It carries a
// stable Code for callers that need to branch on error kind, a human-readable
// Message, and an optional wrapped Err for chaining.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError with the given code, message, and optional cause.
func New(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Err: cause}
}

// Wrap attaches context to an existing error without discarding its code, if any.
// Errors not already an *AppError are wrapped as CodeInternal.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var existing *AppError
	if errors.As(err, &existing) {
		return &AppError{Code: existing.Code, Message: message, Err: err}
	}

	return &AppError{Code: CodeInternal, Message: message, Err: err}
}

// NotFound builds a CodeNotFound error.
func NotFound(message string, cause error) *AppError {
	return New(CodeNotFound, message, cause)
}

// InvalidArgument builds a CodeInvalidArgument error.
func InvalidArgument(message string, cause error) *AppError {
	return New(CodeInvalidArgument, message, cause)
}

// Conflict builds a CodeConflict error.
func Conflict(message string, cause error) *AppError {
	return New(CodeConflict, message, cause)
}

// Unavailable builds a CodeUnavailable error, for transport/backend failures a
// caller may reasonably retry.
func Unavailable(message string, cause error) *AppError {
	return New(CodeUnavailable, message, cause)
}

// Internal builds a CodeInternal error.
func Internal(message string, cause error) *AppError {
	return New(CodeInternal, message, cause)
}

// CodeOf extracts the Code from err, defaulting to CodeInternal for errors that
// were never classified through this package.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error's Code to the net/http status code callers at the
// transport boundary should emit.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
