// pkg/retry/retry.go
// Package retry provides a bounded exponential-backoff combinator for
// fallible operations.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Config defines retry behavior for a wrapped operation.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first one.
	// Default: 5
	MaxAttempts int

	// InitialWait is the wait before the first retry.
	// Default: 500ms
	InitialWait time.Duration

	// MaxWait caps the wait between retries.
	// Default: 10 seconds
	MaxWait time.Duration

	// Multiplier for exponential backoff (must be >= 1.0).
	// Default: 2.0 (doubles wait time on each retry)
	Multiplier float64

	// Jitter adds up to ±25% randomness to each wait when enabled.
	// Default: false (deterministic schedule)
	Jitter bool
}

// DefaultConfig returns the standard backoff schedule: five attempts with
// waits of 500ms, 1s, 2s, 4s between them, capped at 10 seconds.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     10 * time.Second,
		Multiplier:  2.0,
	}
}

// Validate checks if the retry config is valid.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MaxAttempts must be >= 1, got %d", c.MaxAttempts)
	}
	if c.InitialWait < 0 {
		return fmt.Errorf("InitialWait must be >= 0, got %v", c.InitialWait)
	}
	if c.MaxWait < 0 {
		return fmt.Errorf("MaxWait must be >= 0, got %v", c.MaxWait)
	}
	if c.Multiplier < 1.0 {
		return fmt.Errorf("multiplier must be >= 1.0, got %f", c.Multiplier)
	}
	if c.MaxWait > 0 && c.InitialWait > c.MaxWait {
		return fmt.Errorf("InitialWait (%v) must be <= MaxWait (%v)", c.InitialWait, c.MaxWait)
	}
	return nil
}

// calculateWait computes the wait before the given retry (1-based).
func (c Config) calculateWait(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	// Exponential backoff: initialWait * multiplier^(attempt-1)
	wait := float64(c.InitialWait) * math.Pow(c.Multiplier, float64(attempt-1))

	if c.MaxWait > 0 && wait > float64(c.MaxWait) {
		wait = float64(c.MaxWait)
	}

	if c.Jitter {
		jitterRange := wait * 0.25
		wait += (rand.Float64() * 2 * jitterRange) - jitterRange
	}

	if wait < 0 {
		wait = 0
	}

	return time.Duration(wait)
}

// Func is an operation that may fail and should be retried.
type Func func(ctx context.Context) error

// Do executes fn until it succeeds, the attempt budget is exhausted, or the
// context is canceled. Every failure counts against the budget and triggers
// a backoff wait; the wait suspends only the calling goroutine. On
// exhaustion the last observed error is returned, wrapped so that
// errors.Is/errors.As still reach it. Do never logs; observing failures is
// the caller's concern.
func Do(ctx context.Context, config Config, fn Func) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid retry config: %w", err)
	}

	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		// No wait after the final attempt.
		if attempt < config.MaxAttempts-1 {
			wait := config.calculateWait(attempt + 1)

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("max attempts (%d) exceeded: %w", config.MaxAttempts, lastErr)
}
