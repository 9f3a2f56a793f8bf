package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	t.Run("first attempt succeeds", func(t *testing.T) {
		attempts := 0
		err := New().Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 1, attempts)
	})

	t.Run("recovers within budget", func(t *testing.T) {
		r := New(WithMaxAttempts(4), WithInterval(time.Millisecond))
		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("not yet")
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 3, attempts)
	})

	t.Run("budget exhausted returns last error", func(t *testing.T) {
		r := New(WithMaxAttempts(3), WithInterval(time.Millisecond))
		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return errors.New("still down")
		})
		require.EqualError(t, err, "still down")
		require.Equal(t, 3, attempts)
	})

	t.Run("context cancellation wins over interval", func(t *testing.T) {
		r := New(WithMaxAttempts(10), WithInterval(100*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())

		attempts := 0
		err := r.Do(ctx, func(ctx context.Context) error {
			attempts++
			if attempts == 2 {
				cancel()
			}
			return errors.New("down")
		})
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 2, attempts)
	})

	t.Run("fixed interval with multiplier one", func(t *testing.T) {
		r := New(WithMaxAttempts(5), WithInterval(time.Millisecond), WithMultiplier(1))
		start := time.Now()
		attempts := 0
		_ = r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return errors.New("down")
		})
		require.Equal(t, 5, attempts)
		require.Less(t, time.Since(start), time.Second)
	})
}
