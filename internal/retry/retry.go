// Package retry wraps calls to external providers with a bounded retry policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/finplan/internal/logger"
)

// Policy describes how often and how patiently a call is retried.
// MaxAttempts counts the first call, so 3 means two retries.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	// Backoff multiplies the delay after every failed attempt. Values <= 1 keep it fixed.
	// Grown delays are capped at backoff.DefaultMaxInterval.
	Backoff float64

	sleep func(ctx context.Context, d time.Duration) error
}

// Fixed returns a policy with a constant delay between attempts.
func Fixed(maxAttempts int, delay time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, Delay: delay, Backoff: 1}
}

// WithSleep replaces the wait between attempts. Tests use it to avoid real delays.
func (p Policy) WithSleep(sleep func(ctx context.Context, d time.Duration) error) Policy {
	p.sleep = sleep
	return p
}

// Do runs fn until it succeeds, the attempts are exhausted or ctx is done.
// The last error is returned wrapped with the attempt count.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)
	log := logger.FromContext(ctx)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	b := backoff.WithContext(backoff.WithMaxRetries(p.backOff(), uint64(attempts-1)), ctx)

	attempt := 0
	notify := func(err error, delay time.Duration) {
		log.Warn().
			Err(err).
			Str("op", op).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("retrying provider call")
	}

	var timer backoff.Timer
	if p.sleep != nil {
		timer = &sleepTimer{ctx: ctx, cancel: cancel, sleep: p.sleep, c: make(chan time.Time, 1)}
	}

	err := backoff.RetryNotifyWithTimer(func() error {
		attempt++
		return fn(ctx)
	}, b, notify, timer)
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		cause := context.Cause(ctx)
		if errors.Is(err, context.Canceled) && cause != nil {
			err = cause
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	logFailure(log, op, attempt, err)

	return fmt.Errorf("%s: giving up after %d attempts: %w", op, attempt, err)
}

func (p Policy) backOff() backoff.BackOff {
	if p.Backoff <= 1 {
		return backoff.NewConstantBackOff(p.Delay)
	}

	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.Delay),
		backoff.WithMultiplier(p.Backoff),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxElapsedTime(0),
	)
}

// sleepTimer fires once sleep returns. A failed sleep cancels the retry context.
type sleepTimer struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	sleep  func(ctx context.Context, d time.Duration) error
	c      chan time.Time
}

func (t *sleepTimer) Start(d time.Duration) {
	if err := t.sleep(t.ctx, d); err != nil {
		t.cancel(err)
		return
	}

	t.c <- time.Now()
}

func (t *sleepTimer) Stop() {}

func (t *sleepTimer) C() <-chan time.Time {
	return t.c
}

func logFailure(log zerolog.Logger, op string, attempts int, err error) {
	log.Error().Err(err).Str("op", op).Int("attempts", attempts).Msg("provider call failed")
}
