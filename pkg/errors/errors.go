// Package errors provides structured error types for storelink.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the install engine and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (manifests, names, ranges)
//   - FILE_NOT_FOUND / UNRESOLVED_* / NO_VERSIONS: Resource not found
//   - INSTALLER_* / NETWORK_*: Failures of external collaborators
//   - INTERNAL_*: Unexpected internal errors
//
// Every code except the network ones is fatal for an install: the engine
// returns immediately and leaves the store and node_modules as they are.
// Re-running the install converges because every step is idempotent.
// [ExitCode] groups the codes into the binary's exit statuses.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidManifest, "%s: missing version", dir)
//	if errors.Is(err, errors.ErrCodeInvalidManifest) {
//	    // Handle broken package.json
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInstallerFailed, origErr, "npm install in %s", dir)
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
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidPackage     Code = "INVALID_PACKAGE"
	ErrCodeInvalidManifest    Code = "INVALID_MANIFEST"
	ErrCodeInvalidRequirement Code = "INVALID_REQUIREMENT"
	ErrCodeInvalidPath        Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeFileNotFound         Code = "FILE_NOT_FOUND"
	ErrCodeUnresolvedDependency Code = "UNRESOLVED_DEPENDENCY"
	ErrCodeNoVersions           Code = "NO_VERSIONS"

	// External collaborator errors
	ErrCodeInstallerFailed Code = "INSTALLER_FAILED"
	ErrCodeNetwork         Code = "NETWORK_ERROR"

	// Store errors
	ErrCodeStoreCorrupt Code = "STORE_CORRUPT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Process exit statuses reported by the storelink binary.
const (
	ExitFailure    = 1 // internal, store and I/O failures
	ExitUsage      = 2 // invalid input, manifests, names and ranges
	ExitUnresolved = 3 // a requirement no version satisfies
	ExitFetch      = 4 // npm or the registry failed
)

// ExitCode maps err to the process exit status for its code.
func ExitCode(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidPackage, ErrCodeInvalidManifest,
		ErrCodeInvalidRequirement, ErrCodeInvalidPath, ErrCodeFileNotFound:
		return ExitUsage
	case ErrCodeUnresolvedDependency, ErrCodeNoVersions:
		return ExitUnresolved
	case ErrCodeInstallerFailed, ErrCodeNetwork:
		return ExitFetch
	}
	return ExitFailure
}

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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
