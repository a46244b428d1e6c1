package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("domain: not found")
	ErrConflict     = errors.New("domain: conflict")
	ErrUnauthorized = errors.New("domain: unauthorized")

	// ErrInvalidArgument marks a contract violation by the caller (empty
	// required field, out-of-range value, malformed timestamp). It is a
	// programming error, never a business outcome, and is never folded into
	// a Result envelope.
	ErrInvalidArgument = errors.New("domain: invalid argument")
)
