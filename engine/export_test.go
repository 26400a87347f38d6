package engine

import (
	"context"
	"time"
)

// SetSleepForTest replaces the backoff wait so tests can record the
// schedule without real delays.
func (e *Engine) SetSleepForTest(fn func(ctx context.Context, d time.Duration) error) {
	e.sleep = fn
}

// WaitForTest blocks until the current send's goroutine exits.
func (e *Engine) WaitForTest() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}
