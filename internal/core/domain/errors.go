package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidRepoRef indicates a malformed repository reference.
	// This is an unrecoverable configuration error and aborts the run.
	ErrInvalidRepoRef = errors.New("invalid repository reference")

	// ErrInvariantViolation indicates a contract breach between
	// components (for example a duplicate item identity handed to the
	// graph). It is a defect signal, always fatal, never downgraded
	// to a warning.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrRateLimited indicates the API rate limit was exceeded and
	// the retry budget was exhausted while throttled.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthInvalid indicates the configured credential was rejected.
	ErrAuthInvalid = errors.New("authentication invalid")
)
