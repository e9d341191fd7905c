package mws

import (
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// retryPolicy defines how throttled or failed requests are retried.
type retryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	Jitter         float64
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		MaxAttempts:    4,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
	}
}

// backoff calculates the wait before the next attempt. A Retry-After hint
// from the service takes precedence over exponential backoff.
func (p retryPolicy) backoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}

	wait := float64(p.InitialBackoff) * math.Pow(p.BackoffFactor, float64(attempt))
	if p.Jitter > 0 {
		wait += wait * p.Jitter * (rand.Float64()*2 - 1)
	}
	if wait > float64(p.MaxBackoff) {
		wait = float64(p.MaxBackoff)
	}
	return time.Duration(wait)
}

// retryableStatus reports whether a response status is worth retrying.
// The service signals throttling with 503, so server errors retry while
// client errors fail immediately.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// parseRetryAfter extracts the Retry-After duration from a response,
// accepting both the seconds and HTTP-date forms.
func parseRetryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 0
}
