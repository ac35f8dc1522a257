package errors

import (
	"errors"
	"net/http"
)

// Error is the one error shape the gateway speaks at its edges: a stable
// machine code, a human message and the HTTP status the handler layer
// should answer with. The wrapped cause stays out of client payloads.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Sentinels for the failure classes the gateway distinguishes. ErrCacheMiss
// never reaches a client; it travels between the cache layers only.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrUpstream     = New("UPSTREAM_ERROR", http.StatusBadGateway, "upstream request failed")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache entry not found")
)

// New builds a standalone Error.
func New(code string, status int, message string) *Error {
	return &Error{
		Code:    code,
		Status:  status,
		Message: message,
	}
}

// Wrap classifies an underlying error without losing it.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{
		Code:    code,
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// Clone copies a sentinel so a caller can narrow the message without
// mutating the shared value.
func Clone(base *Error, message string) *Error {
	if base == nil {
		return nil
	}
	dup := *base
	if message != "" {
		dup.Message = message
	}
	return &dup
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the cause to the errors package.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches by code, so a Clone of a sentinel still satisfies
// errors.Is(err, sentinel).
func (e *Error) Is(target error) bool {
	var t *Error
	if e == nil || !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// FromError coerces any error into an *Error, defaulting unknown failures
// to the internal class so nothing leaks an unclassified status.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}
