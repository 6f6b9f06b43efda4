package util

import (
	"context"
	"errors"
	"time"
)

// RetryErrWithBackoff calls fn until it returns nil error, sleeping between
// attempts with a doubling delay capped at maxDelay, until ctx is done.
// Context cancellation stops retrying and is returned as the error.
func RetryErrWithBackoff(ctx context.Context, initialDelay, maxDelay time.Duration, fn func(context.Context) error) error {
	if initialDelay <= 0 {
		initialDelay = time.Second
	}
	if maxDelay < initialDelay {
		maxDelay = initialDelay
	}

	delay := initialDelay
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}
