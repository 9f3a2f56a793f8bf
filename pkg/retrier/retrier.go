// Package retrier provides bounded, context-aware retry loops. The broker
// connect step uses it in fixed-interval mode so a connect storm cannot
// outlive its budget.
package retrier

import (
	"context"
	"time"
)

const (
	defaultInterval    = 500 * time.Millisecond
	defaultMaxInterval = 30 * time.Second
	defaultMultiplier  = 2.0
	defaultMaxAttempts = 5
)

// Retrier re-runs an operation until it succeeds, the attempt budget is
// spent, or the context expires.
type Retrier struct {
	interval    time.Duration
	maxInterval time.Duration
	multiplier  float64
	maxAttempts int
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithInterval sets the delay before the first retry.
func WithInterval(d time.Duration) Option {
	return func(r *Retrier) {
		r.interval = d
	}
}

// WithMaxInterval caps the grown delay between retries.
func WithMaxInterval(d time.Duration) Option {
	return func(r *Retrier) {
		r.maxInterval = d
	}
}

// WithMultiplier sets the backoff growth factor. A multiplier of 1 keeps
// the interval fixed.
func WithMultiplier(m float64) Option {
	return func(r *Retrier) {
		r.multiplier = m
	}
}

// WithMaxAttempts sets the total number of attempts, the first included.
func WithMaxAttempts(n int) Option {
	return func(r *Retrier) {
		r.maxAttempts = n
	}
}

// New creates a Retrier with defaults overridden by opts.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		interval:    defaultInterval,
		maxInterval: defaultMaxInterval,
		multiplier:  defaultMultiplier,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do runs fn until it returns nil. Between attempts it waits for the current
// interval or the context, whichever ends first; a cancelled context returns
// ctx.Err immediately. The last attempt's error is returned when the budget
// runs out.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	interval := r.interval

	var err error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}

			interval = time.Duration(float64(interval) * r.multiplier)
			if interval > r.maxInterval {
				interval = r.maxInterval
			}
		}

		if err = fn(ctx); err == nil {
			return nil
		}
	}

	return err
}
