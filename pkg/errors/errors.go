// Package errors provides structured error types for openupm.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library packages
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes follow the failure taxonomy of the resolver and the manifest engine:
//   - not-found: PACKAGE_NOT_FOUND, VERSION_NOT_FOUND
//   - unreachable/auth: NETWORK_ERROR, UNAUTHORIZED
//   - incompatible: INCOMPATIBLE_EDITOR
//   - malformed: MALFORMED_PACKUMENT, INVALID_MANIFEST, COMPATIBILITY_CHECK_FAILED
//   - policy: UNRESOLVED_DEPENDENCY
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPackage, "invalid package name: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidPackage) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodePackageNotFound    Code = "PACKAGE_NOT_FOUND"
	ErrCodeVersionNotFound    Code = "VERSION_NOT_FOUND"
	ErrCodeManifestNotFound   Code = "MANIFEST_NOT_FOUND"
	ErrCodeEditorNotInstalled Code = "EDITOR_NOT_INSTALLED"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	// Compatibility errors
	ErrCodeIncompatible       Code = "INCOMPATIBLE_EDITOR"
	ErrCodeCompatCheckFailed  Code = "COMPATIBILITY_CHECK_FAILED"
	ErrCodeMalformedPackument Code = "MALFORMED_PACKUMENT"

	// Policy errors
	ErrCodeUnresolvedDependency Code = "UNRESOLVED_DEPENDENCY"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// coded is implemented by detail error types that carry their own code.
type coded interface {
	Code() Code
}

// Is reports whether any error in err's chain carries the given code.
func Is(err error, code Code) bool {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			if e.Code == code {
				return true
			}
		case coded:
			if e.Code() == code {
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the outermost error code from err's chain.
// Returns empty string if no coded error is found.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coded:
			return e.Code()
		}
		err = errors.Unwrap(err)
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
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}

// VersionNotFoundError is returned when a registry knows a package but not
// the requested version. Available lists the versions it does publish.
type VersionNotFoundError struct {
	Name      string
	Version   string
	Available []string
}

// Error implements the error interface.
func (e *VersionNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("version %s of %s not found", e.Version, e.Name)
	}
	return fmt.Sprintf("version %s of %s not found (available: %s)",
		e.Version, e.Name, strings.Join(e.Available, ", "))
}

// Code returns the error code for this error type.
func (e *VersionNotFoundError) Code() Code {
	return ErrCodeVersionNotFound
}

// UnresolvedDependencyError is returned when a package resolved but some of
// its transitive dependencies could not be found in any source.
type UnresolvedDependencyError struct {
	Package      string
	Dependencies []string // name@version of each missing dependency
}

// Error implements the error interface.
func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("%s has unresolved dependencies: %s",
		e.Package, strings.Join(e.Dependencies, ", "))
}

// Code returns the error code for this error type.
func (e *UnresolvedDependencyError) Code() Code {
	return ErrCodeUnresolvedDependency
}
