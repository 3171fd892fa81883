package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProcess struct {
	count int64
}

func (cp *countingProcess) Run(ctx context.Context) {
	atomic.AddInt64(&cp.count, 1)
}

func TestSchedulerPeriodic(t *testing.T) {
	ctx := context.Background()

	sch := &Scheduler{}
	process := &countingProcess{}
	job := NewPeriodicProcess("counter", process, 100*time.Millisecond)

	require.NoError(t, sch.ScheduleJob(ctx, job))

	done := make(chan error, 1)
	go func() {
		done <- sch.Run(ctx)
	}()

	time.Sleep(1500 * time.Millisecond)
	require.NoError(t, sch.Stop(ctx))
	require.NoError(t, <-done)

	assert.Greater(t, atomic.LoadInt64(&process.count), int64(0))
}

func TestSchedulerCancel(t *testing.T) {
	ctx := context.Background()

	sch := &Scheduler{}
	job := NewPeriodicProcess("flush", &countingProcess{}, time.Minute)

	require.NoError(t, sch.ScheduleJob(ctx, job))

	// Equivalent job cancels by name.
	require.NoError(t, sch.CancelJob(ctx, NewPeriodicProcess("flush", &countingProcess{}, time.Hour)))

	assert.Equal(t, NotFound, sch.CancelJob(ctx, job))
}
