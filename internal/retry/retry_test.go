package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/retry"
)

func TestPolicy_Do(t *testing.T) {
	type testCase struct {
		name      string
		failures  int
		wantCalls int
		wantErr   bool
	}

	tests := []testCase{
		{name: "FirstAttempt", failures: 0, wantCalls: 1},
		{name: "SucceedsOnLastRetry", failures: 2, wantCalls: 3},
		{name: "Exhausted", failures: 5, wantCalls: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var delays []time.Duration

			p := retry.Fixed(3, 3*time.Second).WithSleep(func(_ context.Context, d time.Duration) error {
				delays = append(delays, d)
				return nil
			})

			calls := 0
			err := p.Do(context.Background(), "sync", func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return errors.New("boom")
				}

				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)

			for _, d := range delays {
				assert.Equal(t, 3*time.Second, d)
			}

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "giving up after 3 attempts")

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestPolicy_DoBackoff(t *testing.T) {
	var delays []time.Duration

	p := retry.Policy{MaxAttempts: 3, Delay: time.Second, Backoff: 2}.
		WithSleep(func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		})

	err := p.Do(context.Background(), "sync", func(context.Context) error { return errors.New("boom") })
	require.Error(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestPolicy_DoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := retry.Fixed(3, time.Hour)

	err := p.Do(ctx, "sync", func(context.Context) error { return errors.New("boom") })
	require.ErrorIs(t, err, context.Canceled)
}

func TestPolicy_DoSleepFailureStops(t *testing.T) {
	stop := errors.New("shutting down")

	p := retry.Fixed(5, time.Second).WithSleep(func(context.Context, time.Duration) error { return stop })

	calls := 0
	err := p.Do(context.Background(), "sync", func(context.Context) error {
		calls++
		return errors.New("boom")
	})

	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestPolicy_DoKeepsLastError(t *testing.T) {
	last := errors.New("mutation during pagination")

	p := retry.Fixed(2, time.Second).WithSleep(func(context.Context, time.Duration) error { return nil })

	calls := 0
	err := p.Do(context.Background(), "sync", func(context.Context) error {
		calls++
		if calls == 2 {
			return last
		}

		return errors.New("boom")
	})

	require.ErrorIs(t, err, last)
	assert.Contains(t, err.Error(), "giving up after 2 attempts")
}
