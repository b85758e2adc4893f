package github

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quotaResponse(remaining, limit int, reset time.Time) *http.Response {
	header := http.Header{}
	header.Set(HeaderRateRemaining, strconv.Itoa(remaining))
	header.Set(HeaderRateLimit, strconv.Itoa(limit))
	header.Set(HeaderRateReset, strconv.FormatInt(reset.Unix(), 10))
	return &http.Response{StatusCode: http.StatusOK, Header: header}
}

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	t.Run("parses quota headers", func(t *testing.T) {
		r := NewRateLimiter(0)
		reset := time.Now().Add(time.Hour).Truncate(time.Second)

		r.UpdateFromResponse(quotaResponse(42, 5000, reset))

		assert.Equal(t, 42, r.Remaining())
		assert.Equal(t, 5000, r.Limit())
		assert.Equal(t, reset.Unix(), r.ResetTime().Unix())
	})

	t.Run("nil response is ignored", func(t *testing.T) {
		r := NewRateLimiter(0)
		r.UpdateFromResponse(nil)
		assert.Equal(t, AuthenticatedRateLimit, r.Remaining())
	})

	t.Run("missing headers leave state untouched", func(t *testing.T) {
		r := NewRateLimiter(0)
		r.UpdateFromResponse(&http.Response{StatusCode: http.StatusOK, Header: http.Header{}})
		assert.Equal(t, AuthenticatedRateLimit, r.Remaining())
		_, throttled := r.ThrottledUntil()
		assert.False(t, throttled)
	})
}

func TestRateLimiter_ThrottledUntil(t *testing.T) {
	t.Run("ready while quota remains", func(t *testing.T) {
		r := NewRateLimiter(0)
		r.UpdateFromResponse(quotaResponse(10, 5000, time.Now().Add(time.Hour)))

		_, throttled := r.ThrottledUntil()
		assert.False(t, throttled)
	})

	t.Run("throttled at zero remaining before reset", func(t *testing.T) {
		r := NewRateLimiter(0)
		reset := time.Now().Add(time.Hour)
		r.UpdateFromResponse(quotaResponse(0, 5000, reset))

		until, throttled := r.ThrottledUntil()
		require.True(t, throttled)
		assert.Equal(t, reset.Unix(), until.Unix())
	})

	t.Run("ready again after reset elapses", func(t *testing.T) {
		r := NewRateLimiter(0)
		r.UpdateFromResponse(quotaResponse(0, 5000, time.Now().Add(-time.Second)))

		_, throttled := r.ThrottledUntil()
		assert.False(t, throttled)
	})
}

func TestRateLimiter_MarkExhausted(t *testing.T) {
	t.Run("uses server reset time", func(t *testing.T) {
		r := NewRateLimiter(0)
		reset := time.Now().Add(10 * time.Minute)

		r.MarkExhausted(reset)

		until, throttled := r.ThrottledUntil()
		require.True(t, throttled)
		assert.Equal(t, reset.Unix(), until.Unix())
	})

	t.Run("zero reset falls back to default cooldown", func(t *testing.T) {
		r := NewRateLimiter(0)

		r.MarkExhausted(time.Time{})

		until, throttled := r.ThrottledUntil()
		require.True(t, throttled)
		assert.InDelta(t, DefaultCooldown.Seconds(), time.Until(until).Seconds(), 2)
	})
}

func TestRateLimiter_Wait(t *testing.T) {
	t.Run("suspends until reset then resumes", func(t *testing.T) {
		r := NewRateLimiter(1000)
		reset := time.Now().Add(150 * time.Millisecond)
		r.UpdateFromResponse(quotaResponse(0, 5000, reset))

		start := time.Now()
		err := r.Wait(context.Background())
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond, "should have suspended until reset")

		// Back to Ready: a follow-up wait passes without suspension.
		start = time.Now()
		require.NoError(t, r.Wait(context.Background()))
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("passes immediately while quota remains", func(t *testing.T) {
		r := NewRateLimiter(1000)
		r.UpdateFromResponse(quotaResponse(100, 5000, time.Now().Add(time.Hour)))

		start := time.Now()
		require.NoError(t, r.Wait(context.Background()))
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("cancellation interrupts the throttle wait", func(t *testing.T) {
		r := NewRateLimiter(1000)
		r.UpdateFromResponse(quotaResponse(0, 5000, time.Now().Add(time.Hour)))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := r.Wait(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
