// Package retry повторяет операции с задержкой по стратегии backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryableFunc - функция которую можно retry
type RetryableFunc func(ctx context.Context) error

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error as is.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retryer выполняет retry логику
type Retryer struct {
	config Config
}

// NewRetryer создает новый Retryer
func NewRetryer(config Config) (*Retryer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	return &Retryer{config: config}, nil
}

// Do выполняет функцию с retry
func (r *Retryer) Do(ctx context.Context, fn RetryableFunc) error {
	var pe *permanentError

	if !r.config.Enabled {
		err := fn(ctx)
		if errors.As(err, &pe) {
			return pe.err
		}
		return err
	}

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.As(err, &pe) {
			return pe.err
		}

		if r.config.MaxAttempts > 0 && attempt >= r.config.MaxAttempts {
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", r.config.MaxAttempts, err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		delay := r.calculateDelay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}

// calculateDelay вычисляет задержку для текущей попытки
func (r *Retryer) calculateDelay(attempt int) time.Duration {
	// считаем во float64, чтобы большие attempt не переполняли int64
	var raw float64

	switch r.config.Backoff {
	case BackoffLinear:
		raw = float64(r.config.InitialDelay) * float64(attempt)
	case BackoffExponential:
		// delay = initial * multiplier^(attempt-1)
		raw = float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1))
	default:
		raw = float64(r.config.InitialDelay)
	}

	var delay time.Duration
	if raw >= float64(r.config.MaxDelay) || math.IsInf(raw, 0) || math.IsNaN(raw) {
		delay = r.config.MaxDelay
	} else {
		delay = time.Duration(raw)
	}
	if delay <= 0 {
		delay = r.config.InitialDelay
	}

	if r.config.Jitter > 0 {
		jitter := time.Duration(float64(delay) * r.config.Jitter * (rand.Float64()*2 - 1))
		delay += jitter
		if delay <= 0 {
			delay = r.config.InitialDelay
		}
	}
	return delay
}
