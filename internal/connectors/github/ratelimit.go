package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// AuthenticatedRateLimit is the authenticated hourly quota.
	AuthenticatedRateLimit = 5000

	// ProactiveRate is the proactive throttle rate (~1.2 req/sec = 4320/hr).
	ProactiveRate = 1.2

	// DefaultCooldown is the throttle duration used when the server
	// signals a rate limit without a usable reset time.
	DefaultCooldown = time.Minute

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter implements dual-strategy rate limiting for the GitHub API.
//
// It is the one piece of process-wide mutable state in the client: the
// remaining-quota counter and the throttle deadline. All access is
// mutex-guarded so concurrent requests observe a consistent quota view.
//
// Conceptually the limiter is a two-state machine. It is Ready while
// quota remains; it becomes Throttled(until) when the counter reaches
// zero or the server answers with an explicit rate-limit status. While
// throttled, Wait suspends callers until the deadline, after which the
// limiter is Ready again.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int       // From API header
	limit     int       // From API header
	resetTime time.Time // From API header
	hasQuota  bool      // False until the first response is observed
	bucket    *rate.Limiter
}

// NewRateLimiter creates a rate limiter with proactive throttling at
// the given request rate. Rates at or below zero fall back to
// ProactiveRate.
func NewRateLimiter(proactiveRate float64) *RateLimiter {
	if proactiveRate <= 0 {
		proactiveRate = ProactiveRate
	}
	return &RateLimiter{
		remaining: AuthenticatedRateLimit, // Assume full quota initially
		limit:     AuthenticatedRateLimit,
		bucket:    rate.NewLimiter(rate.Limit(proactiveRate), 1),
	}
}

// Wait blocks until it is safe to make a request. It first passes the
// proactive token bucket, then suspends for the throttle deadline if
// the observed quota is exhausted.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	until, throttled := r.ThrottledUntil()
	if !throttled {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Until(until)):
	}

	// Back to Ready: the caller re-issues exactly once and the next
	// response refreshes the counters.
	r.mu.Lock()
	if r.remaining == 0 {
		r.remaining = 1
	}
	r.mu.Unlock()
	return nil
}

// ThrottledUntil reports whether the limiter is in the throttled state
// and, if so, until when.
func (r *RateLimiter) ThrottledUntil() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasQuota && r.remaining == 0 && time.Now().Before(r.resetTime) {
		return r.resetTime, true
	}
	return time.Time{}, false
}

// UpdateFromResponse updates rate limit state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
			r.hasQuota = true
		}
	}

	if limit := resp.Header.Get(HeaderRateLimit); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			r.limit = val
		}
	}

	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			r.resetTime = time.Unix(val, 0)
		}
	}
}

// MarkExhausted forces the throttled state, used when the server
// signals an explicit rate-limit response. A zero reset time falls
// back to DefaultCooldown from now.
func (r *RateLimiter) MarkExhausted(resetAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining = 0
	r.hasQuota = true
	if resetAt.IsZero() || !resetAt.After(time.Now()) {
		resetAt = time.Now().Add(DefaultCooldown)
	}
	r.resetTime = resetAt
}

// Remaining returns the current remaining requests.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the rate limit.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

// ResetTime returns the rate limit reset time.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTime
}
