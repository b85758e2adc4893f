// Package github implements the RepoClient port against the GitHub
// REST API.
//
// # Architecture
//
// The package comprises the following components:
//
//   - Client: rate-limited, retrying API access implementing
//     [driven.RepoClient]
//   - RateLimiter: quota tracking and throttle state
//   - Error types: classification into transient, permanent and
//     rate-limit failures
//
// # Authentication
//
// An optional bearer token is attached to every request via a
// [driven.TokenProvider]. A nil provider (or an empty token) is valid
// and yields unauthenticated requests: 60 requests per hour instead of
// 5,000. Absence of a credential is a configuration choice, not an
// error.
//
// # Rate Limiting
//
// The client implements a dual-strategy rate limiting approach:
//
//  1. Proactive throttling: a token bucket limits the request rate so
//     a full traversal stays under the hourly quota.
//
//  2. Reactive handling: the client monitors X-RateLimit-Remaining and
//     X-RateLimit-Reset on every response. When the quota is exhausted,
//     or the server answers with an explicit rate-limit status, new
//     requests suspend until the reset time, then the request is
//     re-issued once before normal flow resumes.
//
// # Retry Policy
//
// Independent of throttling, transient failures (network errors and
// 5xx responses) are retried with exponential backoff and jitter, up
// to a fixed attempt count. Permanent failures (4xx other than rate
// limits) are never retried and surface immediately.
//
// # Concurrency
//
// A bounded number of requests may be in flight at once; excess
// callers queue on a semaphore in submission order. Quota counters are
// mutex-guarded so concurrent requests observe a consistent view.
package github
