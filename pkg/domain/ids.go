package domain

import (
	"strconv"

	dErrors "vouch/pkg/domain-errors"
)

// Principal is an externally-authenticated caller identity, treated as an
// opaque identifier (typically a wallet address or a subject claim). The
// registry never authenticates a principal, it only checks it against stored
// authorization state.
//
// Usage: construct via ParsePrincipal at trust boundaries; direct casting
// bypasses validation.
type Principal string

// ParsePrincipal constructs a Principal from external input.
//
// Errors: returns CodeInvalidInput when the value is empty; no other errors
// are expected.
func ParsePrincipal(s string) (Principal, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal cannot be empty")
	}
	return Principal(s), nil
}

// IsZero reports whether the principal is the null principal.
func (p Principal) IsZero() bool {
	return p == ""
}

// String returns the string representation of the principal.
func (p Principal) String() string {
	return string(p)
}

// RequestID identifies a verification request. IDs are allocated from 1,
// strictly increasing, and never reused.
type RequestID uint64

// ParseRequestID constructs a RequestID from external input.
//
// Errors: returns CodeInvalidInput when the value is not a positive integer.
func ParseRequestID(s string) (RequestID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "request id must be a positive integer")
	}
	return RequestID(n), nil
}

// String returns the decimal representation of the request ID.
func (id RequestID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// LogicalTime is the externally supplied ordering value stamped on every
// mutation. It need not be wall-clock time, only monotonic with respect to
// the global mutation order.
type LogicalTime uint64

// IsZero reports whether the timestamp was never set.
func (t LogicalTime) IsZero() bool {
	return t == 0
}

// String returns the decimal representation of the logical timestamp.
func (t LogicalTime) String() string {
	return strconv.FormatUint(uint64(t), 10)
}
