package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunParallel_Empty(t *testing.T) {
	require.NoError(t, RunParallel(context.Background(), nil))
}

func TestRunParallel_AllSucceed(t *testing.T) {
	var ran atomic.Int32
	tasks := []Task{
		{Name: "a", Func: func(context.Context) error { ran.Add(1); return nil }},
		{Name: "b", Func: func(context.Context) error { ran.Add(1); return nil }},
		{Name: "c", Func: func(context.Context) error { ran.Add(1); return nil }},
	}
	require.NoError(t, RunParallel(context.Background(), tasks))
	assert.Equal(t, int32(3), ran.Load())
}

func TestRunParallel_CollectsEveryFailure(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task{
		{Name: "ok", Func: func(context.Context) error { return nil }},
		{Name: "bad-1", Func: func(context.Context) error { return boom }},
		{Name: "bad-2", Func: func(context.Context) error { return boom }},
	}

	err := RunParallel(context.Background(), tasks)
	require.Error(t, err)

	var batch *BatchError
	require.ErrorAs(t, err, &batch)
	assert.Len(t, batch.Failed, 2)
	for _, f := range batch.Failed {
		assert.ErrorIs(t, f, boom)
	}
}

func TestRunParallel_SuccessfulTasksCompleteDespiteFailure(t *testing.T) {
	var ran atomic.Int32
	tasks := []Task{
		{Name: "bad", Func: func(context.Context) error { return errors.New("fail") }},
		{Name: "ok", Func: func(context.Context) error { ran.Add(1); return nil }},
	}

	err := RunParallel(context.Background(), tasks)
	require.Error(t, err)
	assert.Equal(t, int32(1), ran.Load())
}
