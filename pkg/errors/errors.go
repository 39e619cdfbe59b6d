// Package errors provides structured error types for the rasterd gateway.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the HTTP gateway and CLI
//   - Machine-readable error codes for programmatic handling
//   - A stable mapping from error kind to HTTP status
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - EMPTY_BODY / INVALID_*: Input validation failures (bad request)
//   - UPSTREAM_*: Conversion-service failures (bad gateway / timeout)
//   - ENGINE_* / RASTER_*: Rendering-engine failures (internal)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid dpi: %s", raw)
//	if errors.Is(err, errors.ErrCodeInvalidParameter) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeUpstreamUnreachable, origErr, "kroki unreachable")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeEmptyBody        Code = "EMPTY_BODY"
	ErrCodeInvalidParameter Code = "INVALID_PARAMETER"
	ErrCodeBodyTooLarge     Code = "BODY_TOO_LARGE"

	// Conversion-service errors
	ErrCodeUpstream            Code = "UPSTREAM_ERROR"
	ErrCodeUpstreamTimeout     Code = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamUnreachable Code = "UPSTREAM_UNREACHABLE"

	// Markup and sizing errors
	ErrCodeInvalidMarkup     Code = "INVALID_MARKUP"
	ErrCodeInvalidDimensions Code = "INVALID_DIMENSIONS"

	// Rendering-engine errors
	ErrCodeEngineLaunch Code = "ENGINE_LAUNCH_FAILED"
	ErrCodeRaster       Code = "RASTER_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns ErrCodeInternal for errors that are not an *Error, so that
// unclassified failures always map to a 500-class response.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix but with
// the cause appended when present, since the cause usually names the
// concrete failure (connection refused, deadline exceeded, ...).
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
