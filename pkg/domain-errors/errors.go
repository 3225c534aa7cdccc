// Package domainerrors provides coded errors for the registry's failure
// taxonomy. Services return these so transports can translate them into
// protocol responses without string matching.
//
// All codes represent synchronous, locally detected, non-retryable validation
// failures. Infrastructure facts (a record missing from a store) use
// pkg/platform/sentinel instead; services translate sentinels into these
// domain codes at the service boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeAlreadyExists reports a duplicate creation (one identity per principal).
	CodeAlreadyExists Code = "already_exists"
	// CodeNotFound reports a missing identity or verification request.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized reports a caller lacking the required role: registry
	// owner, identity owner, or the assigned authorized verifier.
	CodeUnauthorized Code = "unauthorized"
	// CodeInvalidInput reports an empty required string or the null principal.
	CodeInvalidInput Code = "invalid_input"
	// CodeAlreadyProcessed reports double-processing of a verification request.
	CodeAlreadyProcessed Code = "already_processed"
	// CodeBadRequest reports a malformed transport request (unparsable body).
	CodeBadRequest Code = "bad_request"
	// CodeInternal reports an unexpected infrastructure failure.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. The message carries enough detail to
// identify the violated precondition.
type Error struct {
	Code    Code
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that never passed through this package.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
