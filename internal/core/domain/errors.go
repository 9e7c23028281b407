package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownEndpoint indicates an endpoint name with no sync strategy.
	ErrUnknownEndpoint = errors.New("unknown endpoint")

	// ErrUnknownTenant indicates a tenant selector matched no connected tenant.
	ErrUnknownTenant = errors.New("unknown tenant")

	// ErrInvalidSplit indicates an unrecognised partitioning granularity.
	ErrInvalidSplit = errors.New("invalid split")

	// ErrCheckpointCorrupt indicates the checkpoint file could not be parsed.
	// There is no automatic recovery: the file must be repaired or removed.
	ErrCheckpointCorrupt = errors.New("checkpoint corrupt")

	// ErrMissingField indicates an entity lacks a field a strategy needs.
	ErrMissingField = errors.New("missing field")

	// Authentication Errors.

	// ErrAuthRequired indicates no stored token is available.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the token has expired and refresh failed.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// RateLimitError is returned by an entity source when the remote service
// asks the caller to wait before retrying.
type RateLimitError struct {
	// RetryAfter is the server-dictated wait.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// Is reports whether target is ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
