package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithInitialDelay(time.Millisecond), WithMaxAttempts(5))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_FatalNotRetried(t *testing.T) {
	calls := 0
	cause := errors.New("invalid template")
	err := Do(context.Background(), func() error {
		calls++
		return Fatal(cause)
	}, WithInitialDelay(time.Millisecond))
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsExhausted(err))
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	cause := errors.New("rate limited")
	err := Do(context.Background(), func() error {
		calls++
		return cause
	}, WithInitialDelay(time.Millisecond), WithMaxAttempts(3))
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, IsExhausted(err))
	assert.ErrorIs(t, err, cause)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func() error {
		return errors.New("transient")
	}, WithInitialDelay(time.Minute))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_BackoffCappedByMaxDelay(t *testing.T) {
	start := time.Now()
	calls := 0
	_ = Do(context.Background(), func() error {
		calls++
		return errors.New("transient")
	},
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(2*time.Millisecond),
		WithMultiplier(10),
		WithMaxAttempts(4))

	assert.Equal(t, 4, calls)
	// 3 waits, each capped at 2ms; generous upper bound for slow CI.
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFatal_NilStaysNil(t *testing.T) {
	assert.NoError(t, Fatal(nil))
	assert.False(t, IsFatal(nil))
}
