package download

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/flakeradar/flakeradar/internal/config"
)

// computeDelay returns the wait before retry number attempt (0-based):
// baseDelay * multiplier^attempt, capped at MaxDelay, with optional uniform
// jitter. When the failed attempt carried a rate-limit reset hint that
// resolves to a delay smaller than MaxDelay, the hint is preferred over the
// computed backoff; the server knows better than the curve.
func computeDelay(cfg config.RetryConfig, attempt int, hint time.Duration) time.Duration {
	if hint > 0 && hint < cfg.MaxDelay {
		return hint
	}

	delay := time.Duration(float64(cfg.BaseDelay) * math.Pow(cfg.BackoffMultiplier, float64(attempt)))
	if delay > cfg.MaxDelay || delay <= 0 {
		delay = cfg.MaxDelay
	}

	if cfg.Jitter && delay > 0 {
		// Uniform jitter over the upper half keeps a meaningful minimum
		// wait while decorrelating concurrent retries.
		half := delay / 2
		delay = half + rand.N(half+1)
	}
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}
