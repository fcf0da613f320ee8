package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts = 5
	DefaultWait        = 2 * time.Second
)

// Operation is a retryable unit of work. It returns nil on success.
type Operation func() error

// ShouldRetryFunc reports whether err is worth another attempt.
type ShouldRetryFunc func(error) bool

// Config controls the retry loop. MaxAttempts counts the first try.
// Multiplier <= 1 waits a constant Wait between attempts; larger values
// grow the wait exponentially up to MaxWait.
type Config struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Wait        time.Duration `yaml:"retry_wait"`
	Multiplier  float64       `yaml:"multiplier"`
	MaxWait     time.Duration `yaml:"max_wait"`
}

// DefaultConfig returns five attempts two seconds apart.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		Wait:        DefaultWait,
		Multiplier:  1,
	}
}

// AttemptError is returned when every attempt failed with a retryable error.
type AttemptError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

func newBackOffPolicy(ctx context.Context, cfg Config) backoff.BackOff {
	var b backoff.BackOff
	if cfg.Multiplier <= 1 {
		b = backoff.NewConstantBackOff(cfg.Wait)
	} else {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = cfg.Wait
		eb.Multiplier = cfg.Multiplier
		eb.RandomizationFactor = 0
		eb.MaxElapsedTime = 0
		if cfg.MaxWait > 0 {
			eb.MaxInterval = cfg.MaxWait
		}
		eb.Reset()
		b = eb
	}

	retries := cfg.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// Do runs op until it succeeds, shouldRetry rejects its error, the attempts
// run out or ctx is done. A non-retryable error is returned unwrapped.
func Do(ctx context.Context, cfg Config, operationName string, op Operation, shouldRetry ShouldRetryFunc) error {
	if shouldRetry == nil {
		shouldRetry = func(error) bool { return true }
	}

	attempts := 0
	permanent := false
	var lastErr error

	err := backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempts++
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if !shouldRetry(err) {
			permanent = true
			return backoff.Permanent(err)
		}
		return err
	}, newBackOffPolicy(ctx, cfg))
	if err == nil {
		return nil
	}
	if permanent {
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if lastErr != nil && !errors.Is(lastErr, err) {
			return fmt.Errorf("%s canceled after %d attempts: %w (last error: %v)", operationName, attempts, err, lastErr)
		}
		return fmt.Errorf("%s canceled: %w", operationName, err)
	}

	return &AttemptError{Operation: operationName, Attempts: attempts, Err: lastErr}
}
