package client

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homi_client_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "homi_client_retry_backoff_seconds",
		Help:    "Backoff duration before a retry by error class",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homi_client_retry_exhausted_total",
		Help: "Total number of requests that failed every attempt by error class",
	}, []string{"error_class"})
)

// RetryConfig controls retries of failed requests.
type RetryConfig struct {
	// MaxAttempts includes the initial request. 1 disables retries.
	MaxAttempts int

	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns a three-attempt exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    250 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// backoffFor scales the configured backoff for the error class: rate limit
// failures wait four times longer, network failures twice as long.
func (rc RetryConfig) backoffFor(class ErrorClass) time.Duration {
	switch class {
	case ErrorClassRateLimit:
		return rc.InitialBackoff * 4
	case ErrorClassNetwork:
		return rc.InitialBackoff * 2
	default:
		return rc.InitialBackoff
	}
}

// retryWithBackoff runs fn until it succeeds, returns a non-retriable class,
// or MaxAttempts is reached. fn reports the class of its failure.
func retryWithBackoff(ctx context.Context, rc RetryConfig, logger zerolog.Logger, fn func() (ErrorClass, error)) error {
	if rc.MaxAttempts < 1 {
		rc.MaxAttempts = 1
	}
	if rc.BackoffMultiplier < 1 {
		rc.BackoffMultiplier = 1
	}

	var (
		lastErr   error
		lastClass ErrorClass
		backoff   time.Duration
	)

	for attempt := 1; attempt <= rc.MaxAttempts; attempt++ {
		class, err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Str("error_class", string(lastClass)).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		lastErr, lastClass = err, class
		if !shouldRetry(class) {
			return err
		}
		if attempt == rc.MaxAttempts {
			break
		}

		if backoff == 0 {
			backoff = rc.backoffFor(class)
		}
		retriesTotal.WithLabelValues(string(class)).Inc()

		// ±20% jitter
		wait := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		retryBackoffSeconds.WithLabelValues(string(class)).Observe(wait.Seconds())

		logger.Debug().
			Str("error_class", string(class)).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("Retrying request after backoff")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * rc.BackoffMultiplier)
		if rc.MaxBackoff > 0 && backoff > rc.MaxBackoff {
			backoff = rc.MaxBackoff
		}
	}

	if rc.MaxAttempts == 1 {
		return lastErr
	}

	retryExhaustedTotal.WithLabelValues(string(lastClass)).Inc()
	logger.Warn().
		Str("error_class", string(lastClass)).
		Int("max_attempts", rc.MaxAttempts).
		Msg("Retry attempts exhausted")

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, rc.MaxAttempts, lastErr)
}
