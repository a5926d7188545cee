// Package jserror defines the API error taxonomy.
//
// NotFound also covers access denied by obscurity: a journal that exists
// but is not visible to the caller is reported as absent so its existence
// is never confirmed to unauthorized parties.
package jserror

import "net/http"

// Error classification tags rendered in the JSON body.
const (
	TagNotFound   = "not-found"
	TagForbidden  = "forbidden"
	TagConflict   = "sync-conflict"
	TagDuplicate  = "duplicate"
	TagValidation = "validation"
)

type (
	// A JSError represents the error format that can be rendered by the server.
	JSError struct {
		HTTPCode   int `json:"-"`
		FieldError err `json:"error"`
	}

	err struct {
		Tag     string `json:"tag,omitempty"`
		Message string `json:"message"`
	}
)

// StatusCode returns the HTTP status code.
func StatusCode(err error) int {
	if jserr, ok := err.(*JSError); ok {
		return jserr.HTTPCode
	}
	return http.StatusInternalServerError
}

// Tag returns the classification tag, or an empty string.
func Tag(err error) string {
	if jserr, ok := err.(*JSError); ok {
		return jserr.FieldError.Tag
	}
	return ""
}

// New returns a new JSError with the given message.
func New(message string) *JSError {
	return &JSError{FieldError: err{Message: message}}
}

// NewWithTagCode returns a new JSError with the given code, tag and message.
func NewWithTagCode(code int, tag, message string) *JSError {
	return &JSError{HTTPCode: code, FieldError: err{Tag: tag, Message: message}}
}

// NotFound returns a 404 error. Used for absent records and for records
// hidden from the caller.
func NotFound(message string) *JSError {
	return NewWithTagCode(http.StatusNotFound, TagNotFound, message)
}

// Forbidden returns a 403 error. The record is visible but the action is
// disallowed by the caller's role.
func Forbidden(message string) *JSError {
	return NewWithTagCode(http.StatusForbidden, TagForbidden, message)
}

// Conflict returns a 409 error reporting a stale append cursor.
func Conflict(message string) *JSError {
	return NewWithTagCode(http.StatusConflict, TagConflict, message)
}

// Duplicate returns a 400 error reporting a unique-constraint violation.
func Duplicate(message string) *JSError {
	return NewWithTagCode(http.StatusBadRequest, TagDuplicate, message)
}

// Validation returns a 400 error reporting a malformed payload.
func Validation(message string) *JSError {
	return NewWithTagCode(http.StatusBadRequest, TagValidation, message)
}

// Error implements error interface.
func (e *JSError) Error() string {
	return e.FieldError.Message
}
