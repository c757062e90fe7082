package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/googleapi"
)

const (
	// DefaultMaxAttempts is the total number of tries including the first
	DefaultMaxAttempts = 4
	// DefaultBaseBackoff is the backoff before the first retry
	DefaultBaseBackoff = 500 * time.Millisecond
	// DefaultBackoffFactor doubles the backoff window per retry
	DefaultBackoffFactor = 2.0
)

type config struct {
	maxAttempts int
	baseBackoff time.Duration
	factor      float64
}

// Option is a functional option for retry configuration
type Option func(*config)

// WithMaxAttempts overrides the total number of attempts
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseBackoff overrides the backoff before the first retry
func WithBaseBackoff(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.baseBackoff = d
		}
	}
}

// Retry runs fn with exponential backoff and full jitter. Only transient
// errors (rate limit, server errors, deadline) are retried; everything
// else is returned immediately. The name identifies the call in logs.
func Retry[T any](ctx context.Context, name string, fn func(context.Context) (T, error), opts ...Option) (T, error) {
	cfg := config{
		maxAttempts: DefaultMaxAttempts,
		baseBackoff: DefaultBaseBackoff,
		factor:      DefaultBackoffFactor,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}
		if attempt == cfg.maxAttempts {
			break
		}

		delay := fullJitter(cfg.baseBackoff, cfg.factor, attempt)
		logging.From(ctx).Debug("LLM call failed, retrying",
			"name", name,
			"attempt", attempt,
			"max_attempts", cfg.maxAttempts,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return zero, goerr.Wrap(ctx.Err(), "context cancelled during LLM retry", goerr.V("name", name))
		case <-time.After(delay):
		}
	}

	return zero, goerr.Wrap(lastErr, "LLM call failed after retries",
		goerr.V("name", name), goerr.V("attempts", cfg.maxAttempts))
}

// fullJitter returns a random delay in [0, base*factor^(attempt-1)).
// Full jitter spreads concurrent retries across the whole window.
func fullJitter(base time.Duration, factor float64, attempt int) time.Duration {
	window := float64(base)
	for i := 1; i < attempt; i++ {
		window *= factor
	}
	return time.Duration(rand.Float64() * window)
}

// retryableMarkers matches transient failures when the SDK error type
// is not preserved through wrapping
var retryableMarkers = []string{
	"rate limit",
	"quota",
	"resource exhausted",
	"resource_exhausted",
	"resourceexhausted",
	"too many requests",
	"429",
	"unavailable",
	"overloaded",
	"internal error",
	"500",
	"502",
	"503",
	"504",
	"deadline exceeded",
}

// IsRetryable reports whether an LLM call error is transient.
// Rate limits, server errors and deadlines are retryable; cancellation,
// auth and bad request errors are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range retryableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
