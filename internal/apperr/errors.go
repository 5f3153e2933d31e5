// Package apperr defines the error taxonomy shared by the move, vote and
// settings services.
package apperr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	// CodeUnknown is returned by CodeOf for errors outside the taxonomy.
	CodeUnknown Code = "UNKNOWN"

	// CodeValidation covers empty names and out-of-range settings.
	CodeValidation Code = "VALIDATION"

	// CodePermission covers non-owner settings edits and non-creator move edits.
	CodePermission Code = "PERMISSION_DENIED"

	// CodeNotFound covers unknown groups and moves.
	CodeNotFound Code = "NOT_FOUND"

	// CodeExpired is a vote on a move whose deadline passed without approval.
	CodeExpired Code = "EXPIRED"
)

// Error is a domain error carrying its category and the violated constraint.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrPermission = &Error{Code: CodePermission, Message: "permission denied"}
	ErrNotFound   = &Error{Code: CodeNotFound, Message: "not found"}
	ErrExpired    = &Error{Code: CodeExpired, Message: "move expired"}
)

// Validation creates a ValidationError.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Permission creates a PermissionError.
func Permission(format string, args ...any) *Error {
	return &Error{Code: CodePermission, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a NotFoundError wrapping the storage cause.
func NotFound(cause error, format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Expired creates an ExpiredError.
func Expired(format string, args ...any) *Error {
	return &Error{Code: CodeExpired, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
