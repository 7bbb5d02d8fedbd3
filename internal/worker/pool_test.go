package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolProcessesTasks(t *testing.T) {
	var handled atomic.Int32
	pool := NewWorkerPool(2, 8, HandlerFunc(func(_ context.Context, task RebuildTask) error {
		assert.False(t, task.RequestedAt.IsZero())
		handled.Add(1)
		return nil
	}))
	pool.Start()

	for i := 0; i < 3; i++ {
		require.NoError(t, pool.Submit(RebuildTask{Reason: "activity created"}))
	}
	require.NoError(t, pool.Shutdown(5*time.Second))

	assert.Equal(t, int32(3), handled.Load())
	assert.Equal(t, int64(3), pool.GetMetrics()["processed"])
}

func TestWorkerPoolBackpressure(t *testing.T) {
	pool := NewWorkerPool(1, 1, HandlerFunc(func(context.Context, RebuildTask) error { return nil }))

	require.NoError(t, pool.Submit(RebuildTask{Reason: "first"}))
	err := pool.Submit(RebuildTask{Reason: "second"})
	assert.True(t, errors.Is(err, ErrBackpressure))
	assert.Equal(t, int64(1), pool.GetMetrics()["backpressure_events"])
	assert.Equal(t, "1/1", pool.GetMetrics()["queue_utilization"])
}

func TestWorkerPoolRecoversFromPanics(t *testing.T) {
	pool := NewWorkerPool(1, 4, HandlerFunc(func(_ context.Context, task RebuildTask) error {
		if task.Reason == "boom" {
			panic("handler exploded")
		}
		return errors.New("store unavailable")
	}))
	pool.Start()

	require.NoError(t, pool.Submit(RebuildTask{Reason: "boom"}))
	require.NoError(t, pool.Submit(RebuildTask{Reason: "fails"}))
	require.NoError(t, pool.Shutdown(5*time.Second))

	m := pool.GetMetrics()
	assert.Equal(t, int64(2), m["failed"])
	assert.Equal(t, int64(0), m["processed"])
}

func TestWorkerPoolRejectsAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(1, 1, HandlerFunc(func(context.Context, RebuildTask) error { return nil }))
	pool.Start()
	require.NoError(t, pool.Shutdown(time.Second))

	assert.True(t, errors.Is(pool.Submit(RebuildTask{Reason: "late"}), ErrPoolClosed))
	assert.NoError(t, pool.Shutdown(time.Second))
}
