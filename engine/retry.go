package engine

import (
	"context"
	"time"
)

// retryState tracks a single send across its attempts. Once any
// content has reached the session, retrying would duplicate partial
// output, so hasContent permanently disables further attempts.
type retryState struct {
	attempts   int
	hasContent bool
}

// next reports whether another attempt is allowed and, if so, how long
// to wait before it.
func (r *retryState) next(maxRetries int, base, max time.Duration) (time.Duration, bool) {
	if r.hasContent || r.attempts >= maxRetries {
		return 0, false
	}
	r.attempts++
	delay := base << (r.attempts - 1)
	if delay > max {
		delay = max
	}
	return delay, true
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
