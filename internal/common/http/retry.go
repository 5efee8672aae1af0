package http

import (
	"context"
	"time"
)

// Backoff describes an exponential retry schedule.
type Backoff struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Retry runs op until it succeeds, shouldRetry rejects its error, the
// attempts run out or ctx is done. onRetry, if set, is called before each
// sleep. The last error is returned unchanged.
func Retry(ctx context.Context, b Backoff, op func(attempt int) error, shouldRetry func(error) bool, onRetry func(attempt int, delay time.Duration, err error)) error {
	attempts := b.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := b.InitialDelay

	var err error
	for i := 1; i <= attempts; i++ {
		err = op(i)
		if err == nil {
			return nil
		}
		if i == attempts || (shouldRetry != nil && !shouldRetry(err)) {
			return err
		}

		if onRetry != nil {
			onRetry(i, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		delay *= 2
		if b.MaxDelay > 0 && delay > b.MaxDelay {
			delay = b.MaxDelay
		}
	}
	return err
}
