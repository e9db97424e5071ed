package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/benchtime/internal/clock"
	"github.com/psantana5/benchtime/internal/diag"
	"github.com/psantana5/benchtime/internal/perfcounter"
	"github.com/psantana5/benchtime/internal/seconds"
)

func TestElapsedEqualsCaptureDifference(t *testing.T) {
	src := clock.NewScripted(1000, 100, 350)
	s := New(src, nil)

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())

	elapsed, err := s.Elapsed()
	require.NoError(t, err)
	assert.Equal(t, clock.Ticks(250), elapsed)

	start, stop := s.Marks()
	assert.Equal(t, clock.Ticks(100), start)
	assert.Equal(t, clock.Ticks(350), stop)

	conv, err := seconds.For(src, seconds.PolicyFloat)
	require.NoError(t, err)
	assert.Equal(t, 0.25, conv.ToSeconds(elapsed).Float64())
}

func TestCountersDoNotAffectElapsed(t *testing.T) {
	hw := perfcounter.NewSimulated().
		Script(perfcounter.CounterCycle, 1000, 5000).
		Script(perfcounter.CounterInstret, 10, 20)
	log := diag.NewLog(nil, 0)
	ctrl := perfcounter.NewHPM(hw, log, perfcounter.DefaultEvent3, perfcounter.DefaultEvent4)
	s := New(clock.NewScripted(1000, 100, 350), ctrl)

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())

	elapsed, err := s.Elapsed()
	require.NoError(t, err)
	assert.Equal(t, clock.Ticks(250), elapsed)

	report := s.Counters()
	require.NotNil(t, report)
	assert.Equal(t, uint64(4000), report.CycleDelta)
	assert.Equal(t, uint64(10), report.InstretDelta)
	assert.Len(t, log.Since(0), 4)
}

func TestDisabledMatchesUnavailable(t *testing.T) {
	run := func(ctrl perfcounter.Controller) (clock.Ticks, *perfcounter.Report) {
		s := New(clock.NewScripted(1000, 7, 19), ctrl)
		require.NoError(t, s.Start())
		require.NoError(t, s.Stop())
		elapsed, err := s.Elapsed()
		require.NoError(t, err)
		return elapsed, s.Counters()
	}

	disabled, disabledReport := run(perfcounter.Noop{})

	log := diag.NewLog(nil, 0)
	hw := perfcounter.NewSimulated().FailAcquire(perfcounter.ErrUnsupported)
	unavailable, unavailableReport := run(perfcounter.NewHPM(hw, log, perfcounter.DefaultEvent3, perfcounter.DefaultEvent4))

	assert.Equal(t, disabled, unavailable)
	assert.Nil(t, disabledReport)
	assert.Nil(t, unavailableReport)
	assert.Equal(t, 1, log.Warnings())
}

type orderRecorder struct {
	calls *[]string
}

func (o orderRecorder) Configure() { *o.calls = append(*o.calls, "configure") }
func (o orderRecorder) SnapshotBefore() perfcounter.Snapshot {
	*o.calls = append(*o.calls, "before")
	return perfcounter.Snapshot{Valid: true}
}
func (o orderRecorder) SnapshotAfter() perfcounter.Snapshot {
	*o.calls = append(*o.calls, "after")
	return perfcounter.Snapshot{Valid: true}
}
func (o orderRecorder) Finalize(_, _ perfcounter.Snapshot) *perfcounter.Report {
	*o.calls = append(*o.calls, "finalize")
	return nil
}
func (o orderRecorder) Active() bool { return true }

type recordingSource struct {
	calls *[]string
}

func (r recordingSource) Capture() clock.Ticks {
	*r.calls = append(*r.calls, "capture")
	return clock.Ticks(len(*r.calls))
}
func (recordingSource) TicksPerSecond() int64 { return 1 }
func (recordingSource) Name() string          { return "recording" }

func TestCaptureOrdering(t *testing.T) {
	var calls []string
	s := New(recordingSource{&calls}, orderRecorder{&calls})

	require.NoError(t, s.Start())
	assert.Equal(t, []string{"configure", "before", "capture"}, calls)

	calls = calls[:0]
	require.NoError(t, s.Stop())
	assert.Equal(t, []string{"after", "capture", "finalize"}, calls)
}

func TestMisuse(t *testing.T) {
	t.Run("stop before start", func(t *testing.T) {
		s := New(clock.NewScripted(1000, 1, 2), nil)
		err := s.Stop()

		var stateErr *StateError
		require.True(t, errors.As(err, &stateErr))
		assert.Equal(t, "stop", stateErr.Op)
		assert.Equal(t, StateIdle, stateErr.State)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StateIdle, s.State())
	})

	t.Run("double start", func(t *testing.T) {
		s := New(clock.NewScripted(1000, 1, 2), nil)
		require.NoError(t, s.Start())
		assert.ErrorIs(t, s.Start(), ErrInvalidTransition)
		assert.Equal(t, StateStarted, s.State())
	})

	t.Run("double stop", func(t *testing.T) {
		s := New(clock.NewScripted(1000, 1, 2, 3), nil)
		require.NoError(t, s.Start())
		require.NoError(t, s.Stop())
		assert.ErrorIs(t, s.Stop(), ErrInvalidTransition)

		elapsed, err := s.Elapsed()
		require.NoError(t, err)
		assert.Equal(t, clock.Ticks(1), elapsed)
	})

	t.Run("elapsed before stop", func(t *testing.T) {
		s := New(clock.NewScripted(1000, 1, 2), nil)
		_, err := s.Elapsed()
		assert.ErrorIs(t, err, ErrNotStopped)

		require.NoError(t, s.Start())
		_, err = s.Elapsed()
		assert.ErrorIs(t, err, ErrNotStopped)
	})
}

func TestRestartAfterStop(t *testing.T) {
	s := New(clock.NewScripted(1000, 0, 10, 100, 130), nil)

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())
	first, err := s.Elapsed()
	require.NoError(t, err)

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())
	second, err := s.Elapsed()
	require.NoError(t, err)

	assert.Equal(t, clock.Ticks(10), first)
	assert.Equal(t, clock.Ticks(30), second)
}

func TestWrappingCycleCounter(t *testing.T) {
	// Raw 64-bit counter bits near the top of the range wrap to small values.
	start := clock.Ticks(-10)
	s := New(clock.NewScripted(1000, start, 5), nil)

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())

	elapsed, err := s.Elapsed()
	require.NoError(t, err)
	assert.Equal(t, clock.Ticks(15), elapsed)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StateIdle, StateStarted))
	assert.True(t, CanTransition(StateStarted, StateStopped))
	assert.True(t, CanTransition(StateStopped, StateStarted))
	assert.False(t, CanTransition(StateIdle, StateStopped))
	assert.False(t, CanTransition(StateStarted, StateStarted))
	assert.False(t, CanTransition(StateStopped, StateStopped))
}
