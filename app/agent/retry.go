package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// RetryPolicy is a fixed-count, fixed-delay loop. No backoff, no jitter:
// the provider either recovers within a few seconds or the caller gets a
// labeled unavailable error.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Retryable   func(error) bool
}

func DefaultRetryPolicy() RetryPolicy {
	delay := 5 * time.Second
	if v := os.Getenv("LLM_RETRY_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			delay = d
		}
	}
	return RetryPolicy{
		MaxAttempts: 3,
		Delay:       delay,
		Retryable:   IsTransient,
	}
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// Do runs fn up to MaxAttempts times, sleeping Delay between failed
// attempts. Non-retryable errors return immediately. When every attempt
// fails the last error is wrapped so callers can still match it with
// errors.Is.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(p.Delay):
			}
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return "", err
		}
		lastErr = err
		fmt.Printf("completion attempt %d/%d failed: %v\n", attempt, p.MaxAttempts, err)
	}

	return "", fmt.Errorf("service unavailable after %d attempts: %w", p.MaxAttempts, lastErr)
}
