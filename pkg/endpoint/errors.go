package endpoint

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is an error carrying the HTTP status it should be answered
// with.
type StatusError struct {
	Status  int
	Message string
	Err     error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// NewStatusError creates a StatusError.
func NewStatusError(status int, message string) *StatusError {
	return &StatusError{Status: status, Message: message}
}

// NotFound returns a 404 error.
func NotFound(format string, args ...any) *StatusError {
	return NewStatusError(http.StatusNotFound, fmt.Sprintf(format, args...))
}

// BadRequest returns a 400 error.
func BadRequest(format string, args ...any) *StatusError {
	return NewStatusError(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

// BindError reports a request parameter that could not be bound. Bind
// errors are answered with 400 before the handler is intercepted.
type BindError struct {
	Param  string
	Source Source
	Err    error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("invalid %s parameter %q: %v", e.Source, e.Param, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// ErrMissing is wrapped by BindError for absent required parameters.
var ErrMissing = errors.New("required parameter is missing")

// statusOf maps a handler error to its HTTP status and client message.
func statusOf(err error) (int, string) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status, se.Message
	}
	var be *BindError
	if errors.As(err, &be) {
		return http.StatusBadRequest, be.Error()
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
