// Package reconcile keeps the local cache and the remote backend telling
// the same story. Saves go remote-first with bounded retries and are
// mirrored into the cache on success; loads prefer remote truth, fall
// back to the stale local copy when the backend is unreachable, and push
// the local copy back up when the remote has visibly lost data.
package reconcile

import (
	"context"
	"fmt"
	"math"
	"time"

	appErrors "memorybox-backend/pkg/errors"
)

// Policy defines retry behavior for remote writes.
type Policy struct {
	MaxAttempts int           // total attempts, not retries
	BaseDelay   time.Duration // delay before the second attempt
	MaxDelay    time.Duration // cap on any single delay
	Factor      float64       // exponential backoff multiplier
}

// DefaultPolicy returns the production schedule: three attempts with 2s
// and 4s between them.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
		Factor:      2.0,
	}
}

// delay returns the wait after the given zero-based attempt.
func (p Policy) delay(attempt int) time.Duration {
	backoff := float64(p.BaseDelay) * math.Pow(p.Factor, float64(attempt))
	delay := time.Duration(backoff)
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Sleeper waits out a backoff delay. Injected so tests can observe the
// schedule instead of living it.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepWithContext is the production Sleeper.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Operation is one attempt of a retryable remote call.
type Operation func(ctx context.Context) error

// RunWithBackoff executes op up to policy.MaxAttempts times. Errors the
// taxonomy marks non-retryable short-circuit immediately; exhausting all
// attempts wraps the last error as EXHAUSTED. onRetry, if non-nil, fires
// before each backoff sleep with the zero-based attempt that just failed.
// No sleep follows the final attempt.
func RunWithBackoff(ctx context.Context, policy Policy, sleep Sleeper, onRetry func(attempt int, err error), op Operation) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	var lastErr error

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return appErrors.NewRemoteUnavailable("save canceled", ctx.Err())
		default:
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !appErrors.Retryable(err) {
			return err
		}
		if attempt == policy.MaxAttempts-1 {
			break
		}

		if onRetry != nil {
			onRetry(attempt, err)
		}
		if err := sleep(ctx, policy.delay(attempt)); err != nil {
			return appErrors.NewRemoteUnavailable("save canceled during backoff", err)
		}
	}

	return appErrors.NewExhausted(
		fmt.Sprintf("operation failed after %d attempts", policy.MaxAttempts), lastErr)
}
