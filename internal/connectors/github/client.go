package github

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/repolens/internal/core/domain"
	"github.com/custodia-labs/repolens/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRetryAttempts is the total attempt budget per request.
	DefaultRetryAttempts = 3

	// DefaultMaxConcurrent is the default in-flight request bound.
	DefaultMaxConcurrent = 4

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second

	// MaxRetryDelay caps the exponential backoff.
	MaxRetryDelay = 30 * time.Second
)

// Ensure Client implements the interface.
var _ driven.RepoClient = (*Client)(nil)

// Client is a rate-limited GitHub API client implementing
// [driven.RepoClient]. It owns the retry and throttle protocol; callers
// see blocking calls that return a result or a classified error.
type Client struct {
	tokenProvider driven.TokenProvider
	httpClient    *http.Client
	baseURL       string

	retryAttempts  int
	retryBaseDelay time.Duration
	proactiveRate  float64

	rateLimiter *RateLimiter
	slots       chan struct{}

	mu sync.Mutex
	gh *gh.Client
}

// Option configures a Client.
type Option func(*Client)

// WithRetryAttempts sets the total attempt budget per request.
func WithRetryAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.retryAttempts = n
		}
	}
}

// WithMaxConcurrent bounds the number of in-flight requests.
func WithMaxConcurrent(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.slots = make(chan struct{}, n)
		}
	}
}

// WithRetryBaseDelay sets the initial backoff delay. Tests use a tiny
// delay to keep retry scenarios fast.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryBaseDelay = d
		}
	}
}

// WithProactiveRate sets the proactive throttle rate in requests per
// second.
func WithProactiveRate(r float64) Option {
	return func(c *Client) {
		if r > 0 {
			c.proactiveRate = r
		}
	}
}

// WithHTTPClient sets a custom HTTP client. The token provider is
// ignored when set; useful for tests with a fake transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL points the client at a different API root, such as a
// test server. The URL must end in a slash-terminated path.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// NewClient creates a GitHub API client. A nil token provider yields
// unauthenticated requests with the lower anonymous quota.
func NewClient(tokenProvider driven.TokenProvider, opts ...Option) *Client {
	c := &Client{
		tokenProvider:  tokenProvider,
		retryAttempts:  DefaultRetryAttempts,
		retryBaseDelay: RetryDelay,
		proactiveRate:  ProactiveRate,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.slots == nil {
		c.slots = make(chan struct{}, DefaultMaxConcurrent)
	}
	c.rateLimiter = NewRateLimiter(c.proactiveRate)
	return c
}

// RateLimiter returns the rate limiter for external inspection.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// ensureClient initializes the go-github client if not already done.
// This is called lazily so we can get the token when needed.
func (c *Client) ensureClient(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gh != nil {
		return nil
	}

	hc := c.httpClient
	if hc == nil {
		var token string
		if c.tokenProvider != nil {
			var err error
			token, err = c.tokenProvider.GetToken(ctx)
			if err != nil {
				return fmt.Errorf("get token: %w", err)
			}
		}
		if token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
			hc = oauth2.NewClient(ctx, ts)
		} else {
			hc = &http.Client{}
		}
		hc.Timeout = DefaultTimeout
	}

	client := gh.NewClient(hc)
	if c.baseURL != "" {
		base, err := url.Parse(c.baseURL)
		if err != nil {
			return fmt.Errorf("parse base URL: %w", err)
		}
		client.BaseURL = base
	}
	c.gh = client
	return nil
}

// ListDirectory returns the immediate entries at path, in listing
// order. Paginated responses are concatenated transparently under the
// same retry and throttle policy.
func (c *Client) ListDirectory(
	ctx context.Context, repo domain.RepositoryRef, path string,
) ([]domain.TreeEntry, error) {
	var entries []domain.TreeEntry

	page := 0
	for {
		var dir []*gh.RepositoryContent
		resp, err := c.call(ctx, path, func(ctx context.Context) (*gh.Response, error) {
			file, dc, resp, err := c.contentsPage(ctx, repo, path, page)
			if err != nil {
				return resp, err
			}
			if file != nil {
				return resp, ErrNotDirectory
			}
			dir = dc
			return resp, nil
		})
		if err != nil {
			return nil, err
		}

		for _, entry := range dir {
			var kind domain.EntryKind
			switch entry.GetType() {
			case "file":
				kind = domain.EntryFile
			case "dir":
				kind = domain.EntryDir
			default:
				// Symlinks and submodules are not analysable.
				continue
			}
			entries = append(entries, domain.TreeEntry{
				Name: entry.GetName(),
				Path: entry.GetPath(),
				Kind: kind,
				Size: int64(entry.GetSize()),
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	return entries, nil
}

// FetchFile returns the decoded content of a single file.
func (c *Client) FetchFile(
	ctx context.Context, repo domain.RepositoryRef, path string,
) ([]byte, error) {
	var content []byte

	_, err := c.call(ctx, path, func(ctx context.Context) (*gh.Response, error) {
		opts := &gh.RepositoryContentGetOptions{Ref: repo.Ref}
		file, _, resp, err := c.gh.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, opts)
		if err != nil {
			return resp, err
		}
		if file == nil {
			return resp, ErrDirectoryNotFile
		}
		decoded, err := file.GetContent()
		if err != nil {
			return resp, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		content = []byte(decoded)
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// contentsPage issues one contents API request. The first page goes
// through the typed go-github endpoint; follow-up pages are built
// manually since the contents endpoint has no ListOptions.
func (c *Client) contentsPage(
	ctx context.Context, repo domain.RepositoryRef, path string, page int,
) (*gh.RepositoryContent, []*gh.RepositoryContent, *gh.Response, error) {
	if page == 0 {
		opts := &gh.RepositoryContentGetOptions{Ref: repo.Ref}
		return c.gh.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, opts)
	}

	escaped := (&url.URL{Path: path}).EscapedPath()
	u := fmt.Sprintf("repos/%s/%s/contents/%s", repo.Owner, repo.Name, escaped)
	q := url.Values{}
	if repo.Ref != "" {
		q.Set("ref", repo.Ref)
	}
	q.Set("page", strconv.Itoa(page))

	req, err := c.gh.NewRequest(http.MethodGet, u+"?"+q.Encode(), nil)
	if err != nil {
		return nil, nil, nil, err
	}

	var dir []*gh.RepositoryContent
	resp, err := c.gh.Do(ctx, req, &dir)
	return nil, dir, resp, err
}

// call runs one logical API request under the full protocol: bounded
// concurrency, proactive and reactive throttling, transient retry with
// exponential backoff and jitter, and error classification.
func (c *Client) call(
	ctx context.Context, path string, fn func(ctx context.Context) (*gh.Response, error),
) (*gh.Response, error) {
	if err := c.ensureClient(ctx); err != nil {
		return nil, err
	}
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	attempts := 0
	throttles := 0
	for {
		// Suspends here while throttled; resumes Ready at reset.
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := fn(ctx)
		if resp != nil && resp.Response != nil {
			c.rateLimiter.UpdateFromResponse(resp.Response)
		}
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		err = c.wrapError(err, path)

		switch {
		case IsRateLimited(err):
			throttles++
			if throttles > c.retryAttempts {
				return nil, fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
			}
			var rateLimitErr *RateLimitError
			errors.As(err, &rateLimitErr)
			c.rateLimiter.MarkExhausted(rateLimitErr.ResetAt)
			// The next Wait suspends until reset, then the request
			// is re-issued once. Throttle waits do not consume the
			// retry budget.
			continue

		case IsPermanent(err):
			return nil, err

		default:
			attempts++
			if attempts >= c.retryAttempts {
				return nil, &FetchError{Path: path, Attempts: attempts, Err: err}
			}
			if err := c.backoff(ctx, attempts); err != nil {
				return nil, err
			}
		}
	}
}

// acquire takes an in-flight slot, queueing in submission order.
func (c *Client) acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case c.slots <- struct{}{}:
		return nil
	}
}

func (c *Client) release() {
	<-c.slots
}

// backoff sleeps for an exponentially growing delay with jitter.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	delay := c.retryBaseDelay << (attempt - 1)
	if delay > MaxRetryDelay {
		delay = MaxRetryDelay
	}
	delay += rand.N(delay/2 + 1)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, path string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		var resetAt time.Time
		if abuseErr.RetryAfter != nil {
			resetAt = time.Now().Add(*abuseErr.RetryAfter)
		}
		return &RateLimitError{
			ResetAt:   resetAt,
			Remaining: 0,
			Limit:     c.rateLimiter.Limit(),
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		status := ghErr.Response.StatusCode
		if status == http.StatusTooManyRequests ||
			(status == http.StatusForbidden && c.rateLimiter.Remaining() == 0) {
			return &RateLimitError{
				ResetAt:   c.rateLimiter.ResetTime(),
				Remaining: c.rateLimiter.Remaining(),
				Limit:     c.rateLimiter.Limit(),
			}
		}
		apiErr := &APIError{
			StatusCode: status,
			Message:    ghErr.Message,
			URL:        ghErr.Response.Request.URL.String(),
		}
		if status == http.StatusUnauthorized {
			return fmt.Errorf("%w: %w", domain.ErrAuthInvalid, apiErr)
		}
		return apiErr
	}

	return fmt.Errorf("request %s: %w", path, err)
}
