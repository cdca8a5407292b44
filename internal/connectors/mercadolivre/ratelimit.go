package mercadolivre

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultRateLimitBackoff is used when a 429 carries no Retry-After header.
const defaultRateLimitBackoff = 10 * time.Second

// RateLimiter paces requests with a token bucket and backs off after the API
// answers 429.
type RateLimiter struct {
	mu      sync.Mutex
	bucket  *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained
// requests. A non-positive rate disables pacing.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	r := &RateLimiter{}
	if requestsPerSecond > 0 {
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		r.bucket = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
	return r
}

// Wait blocks until a request may be sent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if r.bucket == nil {
		return nil
	}
	return r.bucket.Wait(ctx)
}

// Observe records a 429 response and delays the next request.
func (r *RateLimiter) Observe(resp *http.Response) {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return
	}

	backoff := defaultRateLimitBackoff
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			backoff = time.Duration(secs) * time.Second
		}
	}

	r.mu.Lock()
	r.retryAt = time.Now().Add(backoff)
	r.mu.Unlock()
}

// RetryAt returns when the backoff after the last 429 ends.
func (r *RateLimiter) RetryAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt
}
