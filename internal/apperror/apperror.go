package apperror

import "net/http"

// Error is a request-level failure that maps onto a specific HTTP status.
// Anything else reaching a handler boundary becomes an opaque 500.
type Error struct {
	Status  int
	Message string
	Fields  []string // missing field names, for validation failures
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Validation reports missing or malformed input.
func Validation(message string, fields ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message, Fields: fields}
}

// Conflict reports a uniqueness violation, e.g. a duplicate email.
func Conflict(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Auth reports bad credentials or a missing/invalid session.
func Auth(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden reports an action on a resource the caller does not own.
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NotFound reports a resource that does not exist (or no longer does).
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}
