package github

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// GitHub-specific errors.
var (
	// ErrDirectoryNotFile indicates a file fetch resolved to a directory.
	ErrDirectoryNotFile = errors.New("github: path is a directory, not a file")

	// ErrNotDirectory indicates a directory listing resolved to a file.
	ErrNotDirectory = errors.New("github: path is a file, not a directory")

	// ErrMalformedResponse indicates the API answered with content the
	// client could not decode. Never retried.
	ErrMalformedResponse = errors.New("github: malformed response")
)

// RateLimitError represents a rate limit exceeded error with reset time.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// FetchError wraps the last cause after the retry budget for one path
// is exhausted.
type FetchError struct {
	Path     string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("github: fetch %q failed after %d attempts: %v", e.Path, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401
	}
	return false
}

// IsForbidden checks if the error indicates a forbidden resource.
func IsForbidden(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsPermanent reports whether the error is a non-retryable fetch
// failure: the request reached the API and was rejected for a reason a
// retry cannot fix. The scanner skips the offending path with a
// warning instead of aborting the traversal.
func IsPermanent(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != 429
	}
	return errors.Is(err, ErrDirectoryNotFile) ||
		errors.Is(err, ErrNotDirectory) ||
		errors.Is(err, ErrMalformedResponse)
}

// IsTransient reports whether the error may succeed on retry: network
// failures and 5xx responses.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return !IsPermanent(err) && !IsRateLimited(err)
}
