package perfcounter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/benchtime/internal/diag"
)

func messages(entries []diag.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message)
	}
	return out
}

func TestHPMReportsDeltas(t *testing.T) {
	hw := NewSimulated().
		Script(CounterCycle, 1000, 5000).
		Script(CounterInstret, 200, 2600).
		Script(Counter3, 42).
		Script(Counter4, 17)
	log := diag.NewLog(nil, 0)

	h := NewHPM(hw, log, DefaultEvent3, DefaultEvent4)
	h.Configure()
	require.True(t, h.Active())

	before := h.SnapshotBefore()
	after := h.SnapshotAfter()
	report := h.Finalize(before, after)
	require.NotNil(t, report)

	assert.Equal(t, uint64(5000), report.Cycles)
	assert.Equal(t, uint64(4000), report.CycleDelta)
	assert.Equal(t, uint64(2400), report.InstretDelta)
	require.Len(t, report.Generic, 2)
	assert.Equal(t, GenericCounter{ID: Counter3, Value: 42, Event: DefaultEvent3}, report.Generic[0])
	assert.Equal(t, GenericCounter{ID: Counter4, Value: 17, Event: DefaultEvent4}, report.Generic[1])

	assert.Equal(t, []string{
		"Counter 0 holds 5000 (cycles) for a delta of 4000",
		"Counter 2 holds 2600 (instret) for a delta of 2400",
		"Counter 3 holds 42 for event 0x8000",
		"Counter 4 holds 17 for event 0x4000",
	}, messages(log.Since(0)))
	assert.Zero(t, log.Warnings())
}

func TestHPMProgramsAndClearsEvents(t *testing.T) {
	hw := NewSimulated()
	h := NewHPM(hw, nil, EventID15, EventID14)
	h.Configure()

	sel, ok := hw.Event(Counter3)
	require.True(t, ok)
	assert.Equal(t, EventID15, sel)
	sel, ok = hw.Event(Counter4)
	require.True(t, ok)
	assert.Equal(t, EventID14, sel)

	h.Finalize(h.SnapshotBefore(), h.SnapshotAfter())

	for _, id := range GenericCounters {
		mask, ok := hw.Cleared(id)
		require.True(t, ok, "counter %d not cleared", id)
		assert.Equal(t, ClearMask, mask)
	}
	assert.Zero(t, hw.OpenUnits())
	assert.False(t, h.Active())
}

func TestHPMInitFailure(t *testing.T) {
	tests := []struct {
		name string
		hw   *Simulated
	}{
		{"acquire", NewSimulated().FailAcquire(ErrUnsupported)},
		{"init", NewSimulated().FailInit(errors.New("no pmu"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := diag.NewLog(nil, 0)
			h := NewHPM(tt.hw, log, DefaultEvent3, DefaultEvent4)

			h.Configure()

			assert.False(t, h.Active())
			assert.Equal(t, 1, log.Warnings())
			assert.Equal(t, MsgInitFailed, log.Since(0)[0].Message)

			mark := log.Mark()
			assert.Equal(t, Snapshot{}, h.SnapshotBefore())
			assert.Equal(t, Snapshot{}, h.SnapshotAfter())
			assert.Nil(t, h.Finalize(Snapshot{}, Snapshot{}))
			assert.Empty(t, log.Since(mark))
			assert.Zero(t, tt.hw.OpenUnits())
		})
	}
}

func TestHPMDeltaWraps(t *testing.T) {
	hw := NewSimulated().Script(CounterCycle, 1<<64-10, 5)
	h := NewHPM(hw, nil, DefaultEvent3, DefaultEvent4)
	h.Configure()

	report := h.Finalize(h.SnapshotBefore(), h.SnapshotAfter())
	require.NotNil(t, report)
	assert.Equal(t, uint64(15), report.CycleDelta)
}

func TestHPMFailedReadSkipsDelta(t *testing.T) {
	hw := NewSimulated().
		Script(CounterCycle, 1000, 5000).
		Script(CounterInstret, 200, 2600)
	log := diag.NewLog(nil, 0)

	h := NewHPM(hw, log, DefaultEvent3, DefaultEvent4)
	h.Configure()
	before := h.SnapshotBefore()
	require.True(t, before.Valid)

	hw.FailRead(CounterCycle, errors.New("read counter 0: bad file descriptor"))
	after := h.SnapshotAfter()
	assert.False(t, after.Valid)

	report := h.Finalize(before, after)
	require.NotNil(t, report)
	assert.True(t, report.DeltaUnavailable)
	assert.Zero(t, report.CycleDelta)
	assert.Zero(t, report.InstretDelta)
	assert.Equal(t, 0, hw.OpenUnits())

	msgs := messages(log.Since(0))
	assert.Contains(t, msgs, "snapshot: read counter 0: bad file descriptor")
	assert.Contains(t, msgs, "Counter 0 holds 0 (cycles), delta unavailable")
	assert.Equal(t, 1, log.Warnings())
}

func TestHPMReconfigureReleasesPreviousUnit(t *testing.T) {
	hw := NewSimulated()
	h := NewHPM(hw, nil, DefaultEvent3, DefaultEvent4)

	h.Configure()
	h.Configure()
	assert.Equal(t, 1, hw.OpenUnits())

	h.Finalize(Snapshot{}, Snapshot{})
	assert.Zero(t, hw.OpenUnits())
}

func TestNoop(t *testing.T) {
	var c Controller = Noop{}
	c.Configure()
	assert.False(t, c.Active())
	assert.Equal(t, Snapshot{}, c.SnapshotBefore())
	assert.Equal(t, Snapshot{}, c.SnapshotAfter())
	assert.Nil(t, c.Finalize(Snapshot{}, Snapshot{}))
}

func TestNewWithHardware(t *testing.T) {
	hw := NewSimulated()

	disabled := NewWithHardware(Config{Enabled: false}, hw, nil)
	assert.IsType(t, Noop{}, disabled)

	enabled := NewWithHardware(DefaultConfig(), hw, nil)
	if Available {
		assert.IsType(t, &HPM{}, enabled)
	} else {
		assert.IsType(t, Noop{}, enabled)
	}
}

func TestNewBackends(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendSimulated
	c, err := New(cfg, nil)
	require.NoError(t, err)

	c.Configure()
	if !Available {
		assert.False(t, c.Active())
		return
	}
	require.True(t, c.Active())
	report := c.Finalize(c.SnapshotBefore(), c.SnapshotAfter())
	require.NotNil(t, report)
	assert.Equal(t, uint64(4000), report.CycleDelta)
	assert.Equal(t, uint64(2400), report.InstretDelta)

	cfg.Backend = "bogus"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestDefaultEvents(t *testing.T) {
	assert.Equal(t, EventSelector(0x8000), DefaultEvent3)
	assert.Equal(t, EventSelector(0x4000), DefaultEvent4)
}
