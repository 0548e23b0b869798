package coingecko

import (
	"errors"
	"fmt"
)

// FailureKind classifies a failed market data call.
type FailureKind string

const (
	// NetworkFailure covers transport errors and non-2xx responses other than 404.
	NetworkFailure FailureKind = "network"
	// NotFound means the request was valid but the asset id is unknown.
	NotFound FailureKind = "not_found"
	// ParseFailure means the response body could not be decoded.
	ParseFailure FailureKind = "parse"
	// ValidationFailure means the caller passed an invalid parameter.
	ValidationFailure FailureKind = "validation"
)

// Error is the failure value returned by the client. It is never retried
// automatically; any retry is a fresh call by the caller.
type Error struct {
	Kind FailureKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from an error chain. Non-client errors
// report NetworkFailure, the conservative default for the API boundary.
func KindOf(err error) FailureKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return NetworkFailure
}

// IsNotFound reports whether the error chain carries a NotFound failure.
func IsNotFound(err error) bool {
	return KindOf(err) == NotFound
}

// IsValidation reports whether the error chain carries a ValidationFailure.
func IsValidation(err error) bool {
	return KindOf(err) == ValidationFailure
}
