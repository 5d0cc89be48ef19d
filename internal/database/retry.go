package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryOptions controls Retry.
type RetryOptions struct {
	MaxRetries int
	Backoff    time.Duration
}

// DefaultRetryOptions returns three retries starting at 50ms.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries: 3,
		Backoff:    50 * time.Millisecond,
	}
}

// Retry runs fn until it succeeds, fails permanently, or runs out of
// attempts. fn must open and finish its own transaction so each attempt
// starts clean. Backoff doubles after every attempt with up to 25% jitter.
func Retry(ctx context.Context, opts RetryOptions, fn func(ctx context.Context) error) error {
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = DefaultRetryOptions().Backoff
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= opts.MaxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", opts.MaxRetries, err)
		}

		jitter := time.Duration(rand.Int63n(int64(backoff/4) + 1))
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
}
