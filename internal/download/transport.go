// Package download fetches remote artifacts with bounded size, bounded
// duration, and exponential backoff with jitter. Failures are classified
// into a tagged TransportError so retry decisions are exhaustive and
// testable without reflection.
package download

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// TransportError classifies one failed download attempt.
type TransportError struct {
	// StatusCode is the HTTP status, 0 when the failure happened below the
	// HTTP layer.
	StatusCode int

	// RetryAfterHint is a server-provided wait duration (Retry-After or
	// X-RateLimit-Reset), 0 when absent.
	RetryAfterHint time.Duration

	// IsTimeout marks a stalled transfer (no data within the idle timeout).
	IsTimeout bool

	// IsNetworkFailure marks a transport-level error: connection refused,
	// DNS failure, reset.
	IsNetworkFailure bool

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	switch {
	case e.IsTimeout:
		return fmt.Sprintf("transport timeout: %v", e.Err)
	case e.IsNetworkFailure:
		return fmt.Sprintf("network failure: %v", e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	default:
		return fmt.Sprintf("transport error: %v", e.Err)
	}
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt could plausibly succeed:
// network failures, timeouts, and the retryable status family (408, 429,
// 5xx). Client errors like 403 or 404 are terminal.
func (e *TransportError) Retryable() bool {
	if e.IsTimeout || e.IsNetworkFailure {
		return true
	}
	switch {
	case e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// parseRetryHint extracts a server wait hint from rate-limit headers:
// Retry-After (delta seconds or an HTTP date) or X-RateLimit-Reset (unix
// epoch seconds). Returns 0 when no usable hint is present.
func parseRetryHint(h http.Header, now time.Time) time.Duration {
	if raw := h.Get("Retry-After"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
		if at, err := http.ParseTime(raw); err == nil {
			if d := at.Sub(now); d > 0 {
				return d
			}
		}
	}
	if raw := h.Get("X-RateLimit-Reset"); raw != "" {
		if epoch, err := strconv.ParseInt(raw, 10, 64); err == nil {
			if d := time.Unix(epoch, 0).Sub(now); d > 0 {
				return d
			}
		}
	}
	return 0
}
