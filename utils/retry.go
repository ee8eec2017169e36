package utils

import (
	"fmt"
	"time"
)

// RetryConfig retries an idempotent operation with exponential back-off.
// A category sync is safe to re-run wholesale, so the pipeline wraps the
// whole sync step rather than individual statements.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *Logger
}

// Do executes fn until it succeeds or MaxAttempts is exhausted.
func (r *RetryConfig) Do(operationName string, fn func() error) error {
	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				r.Logger.Info("%s succeeded on attempt %d", operationName, attempt)
			}
			return nil
		}

		if attempt < r.MaxAttempts {
			r.Logger.Warn("%s failed (attempt %d/%d): %v — retrying in %v",
				operationName, attempt, r.MaxAttempts, lastErr, delay)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}
