package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Memolish error code. Codes mirror the backend's
// structured error payloads where one exists, so callers can branch on them.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"     // 400
	ErrUnauthenticated   ErrorCode = "UNAUTHENTICATED"     // 401
	ErrNoCredits         ErrorCode = "NO_CREDITS"          // 402, quota exhausted
	ErrNotFound          ErrorCode = "NOT_FOUND"           // 404
	ErrTransformInFlight ErrorCode = "TRANSFORM_IN_FLIGHT" // 409, duplicate transform for the same memo
	ErrBackend           ErrorCode = "BACKEND_ERROR"       // 502, backend reported failure
	ErrNetwork           ErrorCode = "NETWORK"             // transport-level failure, no response
	ErrInternal          ErrorCode = "INTERNAL"            // 500
)

// MemolishError represents a structured error with code, status, and details.
type MemolishError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *MemolishError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *MemolishError {
	return &MemolishError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnauthenticated creates a 401 error for requests the backend rejected
// for a missing or unknown session.
func NewUnauthenticated(msg string) *MemolishError {
	if msg == "" {
		msg = "no session; run 'memolish login <session-id>' first"
	}
	return &MemolishError{
		Code:    ErrUnauthenticated,
		Status:  401,
		Message: msg,
	}
}

// NewNoCredits creates the 402 quota-exhausted error. The store and UI
// branch on this code to show the upsell/wait path instead of a generic
// failure message.
func NewNoCredits(msg string) *MemolishError {
	if msg == "" {
		msg = "daily AI transform credits exhausted"
	}
	return &MemolishError{
		Code:    ErrNoCredits,
		Status:  402,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a memo the backend does not know.
func NewNotFound(identifier string) *MemolishError {
	return &MemolishError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("memo not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewTransformInFlight creates a 409 error for a duplicate concurrent
// transform of the same memo.
func NewTransformInFlight(id int) *MemolishError {
	return &MemolishError{
		Code:    ErrTransformInFlight,
		Status:  409,
		Message: fmt.Sprintf("a transform for memo %d is already running", id),
		Details: map[string]any{"id": id},
	}
}

// NewBackend creates an error carrying the backend's own error payload.
// The payload's code is surfaced unmodified so callers can branch on it.
func NewBackend(status int, code, msg string) *MemolishError {
	c := ErrBackend
	if code != "" {
		c = ErrorCode(code)
	}
	if msg == "" {
		msg = fmt.Sprintf("backend returned status %d", status)
	}
	return &MemolishError{
		Code:    c,
		Status:  status,
		Message: msg,
	}
}

// NewNetwork creates a transport-level error for requests that never got a
// response (DNS failure, refused connection, reset).
func NewNetwork(err error) *MemolishError {
	msg := "network error"
	if err != nil {
		msg = err.Error()
	}
	return &MemolishError{
		Code:    ErrNetwork,
		Status:  0,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *MemolishError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &MemolishError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a MemolishError with the given code.
func Is(err error, code ErrorCode) bool {
	var mErr *MemolishError
	if stderrors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}
