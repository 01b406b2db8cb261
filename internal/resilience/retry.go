// Package resilience provides retry with exponential backoff and
// transient-error classification for calls to external data sources.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Policy controls retry behavior. The zero value is usable: it retries
// twice with a 250ms base delay.
type Policy struct {
	// Retries is the number of retries after the first attempt.
	Retries int

	// BaseDelay is the delay before the first retry; each subsequent
	// retry doubles it, up to MaxDelay.
	BaseDelay time.Duration

	// MaxDelay caps the backoff.
	MaxDelay time.Duration

	// Jitter is the random fraction applied to each delay (0.25 means
	// ±25%).
	Jitter float64

	// Classify decides whether an error is worth retrying. Nil means
	// IsTransient.
	Classify func(error) bool

	// OnRetry, when set, is invoked before each retry sleep.
	OnRetry func(attempt int, err error)
}

func (p Policy) normalized() Policy {
	if p.Retries <= 0 {
		p.Retries = 2
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 250 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 10 * time.Second
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	if p.Classify == nil {
		p.Classify = IsTransient
	}
	return p
}

func (p Policy) delay(attempt int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// Retry runs fn until it succeeds, a non-transient error occurs, the
// retry budget is spent, or ctx is cancelled. It returns the value of
// the successful call, or the last error.
func Retry[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.normalized()

	var zero T
	var lastErr error
	for attempt := 0; attempt <= p.Retries; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !p.Classify(err) || attempt == p.Retries {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err)
		}

		timer := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

// LogRetries returns an OnRetry callback that logs each retry through
// the global logger.
func LogRetries(source, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying gateway call",
			zap.String("source", source),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
