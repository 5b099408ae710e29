// Package apperror provides status-carrying errors that the HTTP layer
// maps to the JSON error envelope.
package apperror

import (
	"errors"
	"net/http"
)

// Error is an error classified with the HTTP status it should produce.
type Error struct {
	Status  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error. A zero status is treated as 500.
func New(status int, message string) *Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &Error{
		Status:  status,
		Message: message,
	}
}

// Validation creates a 400 error for a missing or invalid field.
func Validation(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// NotFound creates a 404 error.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Wrap classifies err with the given status and message, keeping err as the cause.
func Wrap(err error, status int, message string) *Error {
	e := New(status, message)
	e.Err = err
	return e
}

// From returns err as a classified error. Errors that carry no status become
// a 500 with their raw message.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Status == 0 {
			return Wrap(appErr.Err, http.StatusInternalServerError, appErr.Message)
		}
		return appErr
	}

	return Wrap(err, http.StatusInternalServerError, err.Error())
}
