package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBroadcaster struct {
	calls atomic.Int32
	err   error
}

func (b *countingBroadcaster) Broadcast(ctx context.Context) error {
	b.calls.Add(1)
	return b.err
}

// ==================== Scheduler 测试 ====================

func TestScheduler_RunsTaskPeriodically(t *testing.T) {
	s := NewScheduler(time.Second)
	var calls atomic.Int32
	s.AddTask("tick", 10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	require.Equal(t, 1, s.Tasks())

	s.Start()
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
}

func TestScheduler_IgnoresInvalidInterval(t *testing.T) {
	s := NewScheduler(0)
	s.AddTask("never", 0, func(ctx context.Context) error { return nil })
	assert.Equal(t, 0, s.Tasks())
	assert.Equal(t, time.Minute, s.timeout)
}

func TestScheduler_TaskErrorDoesNotStop(t *testing.T) {
	s := NewScheduler(time.Second)
	b := &countingBroadcaster{err: errors.New("db down")}
	RegisterBoardBroadcast(s, b, 10*time.Millisecond)

	s.Start()
	defer s.Stop()
	require.Eventually(t, func() bool { return b.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
}
