package discord

import (
	"context"
	"time"
)

// RetryPolicy decides how throttled or unavailable requests are retried.
type RetryPolicy struct {
	// MaxRetries is the number of extra attempts after the first one.
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Delay returns the wait before retry number attempt (1-based). The
// exponential backoff is capped at MaxDelay, but a server-supplied
// retry-after always wins when it is longer.
func (p RetryPolicy) Delay(attempt int, retryAfter time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	backoff := p.BaseDelay
	for i := 1; i < attempt && backoff < p.MaxDelay; i++ {
		backoff *= 2
	}
	if p.MaxDelay > 0 && backoff > p.MaxDelay {
		backoff = p.MaxDelay
	}

	if retryAfter > backoff {
		return retryAfter
	}
	return backoff
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
