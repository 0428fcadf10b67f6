package worker

import (
	"context"
	"errors"
	"time"

	"comercioapp/internal/infra"
)

// errNoReintentar stops withRetry early.
var errNoReintentar = infra.ErrMailerNoConfigurado

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			// 1s, 2s … (exponential backoff)
			wait := time.Duration(1<<uint(i-1)) * retryUnit
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		if errors.Is(err, errNoReintentar) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// retryUnit is the first backoff step of withRetry; tests shorten it.
var retryUnit = time.Second

const maxOutboxBackoff = 30 * time.Minute

// computeRetryBackoff is the delay before outbox attempt n+1:
// 30s, 1m, 2m, 4m … capped at 30m.
func computeRetryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	if retryCount > 7 {
		return maxOutboxBackoff
	}
	d := time.Duration(1<<uint(retryCount-1)) * 30 * time.Second
	if d > maxOutboxBackoff {
		return maxOutboxBackoff
	}
	return d
}
