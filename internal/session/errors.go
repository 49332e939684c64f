package session

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for session operations.
const (
	CodeNotFound = "SESSION_NOT_FOUND"
	CodeExpired  = "SESSION_EXPIRED"
	CodeInvalid  = "SESSION_INVALID"
	CodeStorage  = "SESSION_STORAGE_ERROR"
)

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound = &Error{Code: CodeNotFound}
	ErrExpired  = &Error{Code: CodeExpired}
	ErrInvalid  = &Error{Code: CodeInvalid}
	ErrStorage  = &Error{Code: CodeStorage}
)

// Error represents a session-related error.
type Error struct {
	Code      string
	SessionID string
	Cause     error
}

func (e *Error) Error() string {
	msg := e.Code
	if e.SessionID != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.SessionID)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func notFound(id string) error { return &Error{Code: CodeNotFound, SessionID: id} }

func storageError(op string, err error) error {
	return &Error{Code: CodeStorage, Cause: fmt.Errorf("%s: %w", op, err)}
}

// HTTPStatus maps a session error to the status a transport should answer
// with. Unknown and expired sessions are 404 so clients re-initialize.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrExpired):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
