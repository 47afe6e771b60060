// Package errors provides the coded error type used across cratediff.
//
// Every failure that crosses a package boundary carries a [Code] so that the
// CLI and the HTTP service can decide how to react without string matching:
//
//   - INVALID_*: malformed input (package ids, diff requests, flags)
//   - LOOKUP_FAILED, NOT_FOUND, NETWORK_ERROR: registry lookups; callers
//     degrade the affected field to "absent" and keep going
//   - METADATA_UNAVAILABLE: the workspace graph could not be produced; fatal
//     whenever local workspace context is required
//   - AMBIGUOUS_REGISTRY: several registry roots matched; informational
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidRequest, "multiple '@' in %q", arg)
//	if errors.Is(err, errors.ErrCodeInvalidRequest) {
//	    // reject the argument
//	}
//
//	err := errors.Wrap(errors.ErrCodeMetadata, origErr, "cargo metadata for %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers.
type Code string

const (
	// input
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidPackage   Code = "INVALID_PACKAGE"
	ErrCodeInvalidPackageID Code = "INVALID_PACKAGE_ID"
	ErrCodeInvalidRequest   Code = "INVALID_REQUEST"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidManifest  Code = "INVALID_MANIFEST"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	// collaborators
	ErrCodeLookupFailed Code = "LOOKUP_FAILED"
	ErrCodeMetadata     Code = "METADATA_UNAVAILABLE"
	ErrCodeAmbiguous    Code = "AMBIGUOUS_REGISTRY"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeUnsupported  Code = "UNSUPPORTED"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code. Wrapped
// inner codes do not match: INVALID_REQUEST(INVALID_PACKAGE) is a request
// error.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error
// values and err.Error() otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
