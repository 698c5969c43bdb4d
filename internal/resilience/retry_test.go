package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     1.0,
		JitterFraction: 0,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(3), func(context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError(eris.New("flaky"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_NonTransientFailsImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(5), func(context.Context) error {
		calls++
		return eris.New("permanent")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(3), func(context.Context) error {
		calls++
		return NewTransientError(eris.New("always"))
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastRetry(10), func(context.Context) error {
		calls++
		cancel()
		return NewTransientError(eris.New("flaky"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ReturnsValue(t *testing.T) {
	calls := 0
	got, err := DoVal(context.Background(), fastRetry(3), func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, NewTransientError(eris.New("flaky"))
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(eris.New("boring")))
	assert.True(t, IsTransient(NewTransientError(eris.New("x"))))
	assert.True(t, IsTransient(eris.New("sqlite: database is locked")))
	assert.True(t, IsTransient(eris.Wrap(NewTransientError(eris.New("inner")), "outer")))
}
