package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name  string
	runs  atomic.Int32
	block chan struct{} // when non-nil, Run waits on it
	ctxCh chan context.Context
}

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.ctxCh != nil {
		j.ctxCh <- ctx
	}
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
		}
	}
	return nil
}

func (j *countingJob) Name() string { return j.name }

func TestSchedulerRunsJobsOnInterval(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "refresh"}

	require.NoError(t, s.AddJob("@every 1s", job))
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 2
	}, 5*time.Second, 50*time.Millisecond)
}

func TestSchedulerSkipsOverlappingTicks(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "slow", block: make(chan struct{})}

	require.NoError(t, s.AddJob("@every 1s", job))
	s.Start()

	// Let several ticks fire while the first run blocks.
	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 1
	}, 5*time.Second, 50*time.Millisecond)
	time.Sleep(2500 * time.Millisecond)
	assert.Equal(t, int32(1), job.runs.Load(), "overlapping ticks must be skipped")

	close(job.block)
	s.Stop()
}

func TestSchedulerStopCancelsInFlightJobs(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{
		name:  "inflight",
		block: make(chan struct{}), // never closed: only cancellation releases Run
		ctxCh: make(chan context.Context, 1),
	}

	require.NoError(t, s.AddJob("@every 1s", job))
	s.Start()

	var jobCtx context.Context
	select {
	case jobCtx = <-job.ctxCh:
	case <-time.After(5 * time.Second):
		t.Fatal("job never started")
	}

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return, in-flight job was not cancelled")
	}

	assert.Error(t, jobCtx.Err(), "job context must be cancelled on Stop")
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "manual"}

	require.NoError(t, s.RunNow(job))
	assert.Equal(t, int32(1), job.runs.Load())
}
