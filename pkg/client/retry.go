package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for retry operations.
var (
	fetchRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krishi_fetch_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	fetchRetryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "krishi_fetch_backoff_seconds",
		Help:    "Backoff duration between fetch attempts",
		Buckets: []float64{0.1, 0.4, 0.8, 1.6, 3.2, 6.4},
	})

	fetchRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krishi_fetch_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})

	fetchCanceledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "krishi_fetch_canceled_total",
		Help: "Total number of fetches abandoned because the caller canceled",
	})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// BaseDelay is the wait after the first failed attempt.
	BaseDelay time.Duration

	// Multiplier is the factor applied per further attempt.
	Multiplier float64

	// MaxBackoff caps a single wait. Zero means no cap.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns the default retry configuration:
// two attempts, 400ms before the second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 2,
		BaseDelay:   400 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// Backoff returns the wait after the failed attempt with the given
// zero-based index: BaseDelay * Multiplier^attemptIndex.
func (c RetryConfig) Backoff(attemptIndex int) time.Duration {
	if attemptIndex < 0 {
		attemptIndex = 0
	}
	mult := c.Multiplier
	if mult <= 0 {
		mult = 2.0
	}

	d := time.Duration(float64(c.BaseDelay) * math.Pow(mult, float64(attemptIndex)))
	if c.MaxBackoff > 0 && d > c.MaxBackoff {
		return c.MaxBackoff
	}
	return d
}

// retryWithBackoff executes fn until it succeeds or attempts run out.
// Cancellation of ctx aborts immediately, including during backoff, and is
// reported as ErrCanceled rather than a failure. It returns the number of
// attempts made.
func retryWithBackoff(ctx context.Context, cfg RetryConfig, logger zerolog.Logger, fn func(attempt int) error) (int, error) {
	maxAttempts := max(cfg.MaxAttempts, 1)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			fetchCanceledTotal.Inc()
			return attempt, fmt.Errorf("%w: %v", ErrCanceled, err)
		}

		err := fn(attempt)
		if err == nil {
			if attempt > 0 {
				logger.Info().
					Int("attempt", attempt+1).
					Msg("Request succeeded after retry")
			}
			return attempt + 1, nil
		}

		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			fetchCanceledTotal.Inc()
			return attempt + 1, fmt.Errorf("%w: %v", ErrCanceled, err)
		}

		lastErr = err
		class := ClassifyError(err)

		logger.Warn().
			Err(err).
			Str("error_class", string(class)).
			Int("attempt", attempt+1).
			Msg("Fetch attempt failed")

		// If this was the last attempt, don't wait
		if attempt+1 >= maxAttempts {
			break
		}

		wait := cfg.Backoff(attempt)
		fetchRetriesTotal.WithLabelValues(string(class)).Inc()
		fetchRetryBackoffSeconds.Observe(wait.Seconds())

		logger.Debug().
			Int("attempt", attempt+1).
			Dur("backoff", wait).
			Msg("Retrying request after backoff")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			fetchCanceledTotal.Inc()
			return attempt + 1, fmt.Errorf("%w: %v", ErrCanceled, ctx.Err())
		case <-timer.C:
		}
	}

	class := ClassifyError(lastErr)
	fetchRetryExhaustedTotal.WithLabelValues(string(class)).Inc()
	logger.Warn().
		Str("error_class", string(class)).
		Int("max_attempts", maxAttempts).
		Msg("Retry attempts exhausted")

	return maxAttempts, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, maxAttempts, lastErr)
}
