package apierr

import (
	"fmt"
	"net/http"
)

// Stable codes returned in the error envelope.
const (
	CodeInternal           = "internal_error"
	CodeInvalidRequest     = "invalid_request"
	CodeStorageUnavailable = "storage_unavailable"
	CodeSynthesisFailed    = "synthesis_failed"
	CodeQueueFailed        = "queue_failed"
)

// Error is a client-facing failure. Message is safe to send; Cause is kept
// for logs and errors.Is/As and never leaves the process.
type Error struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code != "" && t.Code == e.Code
}

// New exposes err's text as the message.
func New(status int, code string, err error) *Error {
	ae := &Error{Status: status, Code: code, Cause: err}
	if err != nil {
		ae.Message = err.Error()
	}
	return ae
}

// Wrap hides cause behind a fixed message.
func Wrap(status int, code, message string, cause error) *Error {
	return &Error{Status: status, Code: code, Message: message, Cause: cause}
}

func BadRequest(code, message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Message: message}
}

// NotFound codes as <resource>_not_found, e.g. lesson_not_found.
func NotFound(resource string, cause error) *Error {
	ae := New(http.StatusNotFound, resource+"_not_found", cause)
	if ae.Message == "" {
		ae.Message = resource + " not found"
	}
	return ae
}

func Internal(cause error) *Error {
	return Wrap(http.StatusInternalServerError, CodeInternal, "internal error", cause)
}
