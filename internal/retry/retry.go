package retry

import (
	"context"
	"time"
)

// Policy controls DoWithRetry. Delays double after every failed attempt and
// are capped at MaxDelay when it is set.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DoWithRetry executes fn up to p.Attempts times with exponential backoff.
// It stops early if the context is canceled and returns the last error of fn.
func DoWithRetry(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	var err error
	delay := p.BaseDelay
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err = fn(ctx); err == nil {
			return nil
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return err
}
