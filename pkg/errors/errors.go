// Package errors provides structured error types for loomviz.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, terminal browser and viewer server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The three failure classes of the viewer each have a dedicated code:
//   - FETCH_ERROR: loading the descriptor feed failed (network or parse)
//   - INDEX_OUT_OF_RANGE: selection or lookup of a non-existent API index
//   - DANGLING_EDGE: an edge references a step that is not in the graph
//
// The remaining codes cover input validation and internal failures.
//
// # Usage
//
//	err := errors.IndexError(7, 3)
//	if errors.Is(err, errors.ErrCodeIndexOutOfRange) {
//	    // Handle bad selection
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFetch, origErr, "load %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Viewer failure classes
	ErrCodeFetch           Code = "FETCH_ERROR"
	ErrCodeIndexOutOfRange Code = "INDEX_OUT_OF_RANGE"
	ErrCodeDanglingEdge    Code = "DANGLING_EDGE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidGraph  Code = "INVALID_GRAPH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeLayout   Code = "LAYOUT_FAILED"
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
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// =============================================================================
// Viewer Failure Constructors
// =============================================================================

// FetchError wraps a failure to load the descriptor feed from source.
func FetchError(source string, cause error) *Error {
	return Wrap(ErrCodeFetch, cause, "load descriptors from %s", source)
}

// IndexError reports a lookup of index in a sequence of length n.
func IndexError(index, n int) *Error {
	return New(ErrCodeIndexOutOfRange, "index %d out of range [0, %d)", index, n)
}

// DanglingEdgeError reports an edge whose endpoint is not a known step.
func DanglingEdgeError(from, to, missing string) *Error {
	return New(ErrCodeDanglingEdge, "edge %s → %s references unknown node %q", from, to, missing)
}
