package lifecycle

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls   atomic.Int32
	started chan struct{}
	block   bool
	sawStop atomic.Bool
}

func newCountingRunner(block bool) *countingRunner {
	return &countingRunner{started: make(chan struct{}, 16), block: block}
}

func (r *countingRunner) Run(ctx context.Context) {
	r.calls.Add(1)
	r.started <- struct{}{}
	if r.block {
		<-ctx.Done()
		r.sawStop.Store(true)
	}
}

func waitStarted(t *testing.T, r *countingRunner, timeout time.Duration) {
	t.Helper()
	select {
	case <-r.started:
	case <-time.After(timeout):
		t.Fatal("runner was not started in time")
	}
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := NewScheduler(newCountingRunner(false), "every hour please", false, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sweep schedule")
}

func TestScheduler_RunOnStart(t *testing.T) {
	runner := newCountingRunner(false)
	s, err := NewScheduler(runner, "@every 1h", true, nil)
	require.NoError(t, err)

	s.Start()
	waitStarted(t, runner, 2*time.Second)
	s.Stop(time.Second)

	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestScheduler_NoRunOnStart(t *testing.T) {
	runner := newCountingRunner(false)
	s, err := NewScheduler(runner, "@every 1h", false, nil)
	require.NoError(t, err)

	s.Start()
	next := s.NextRun()
	s.Stop(time.Second)

	assert.Zero(t, runner.calls.Load())
	assert.WithinDuration(t, time.Now().Add(time.Hour), next, 5*time.Second)
}

func TestScheduler_TicksOnSchedule(t *testing.T) {
	runner := newCountingRunner(false)
	s, err := NewScheduler(runner, "@every 1s", false, nil)
	require.NoError(t, err)

	s.Start()
	defer s.Stop(time.Second)
	waitStarted(t, runner, 3*time.Second)
}

func TestScheduler_StopCancelsRunningSweep(t *testing.T) {
	runner := newCountingRunner(true)
	s, err := NewScheduler(runner, "@every 1h", true, nil)
	require.NoError(t, err)

	s.Start()
	waitStarted(t, runner, 2*time.Second)

	s.Stop(2 * time.Second)
	assert.True(t, runner.sawStop.Load())
}
