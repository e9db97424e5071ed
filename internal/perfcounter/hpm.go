package perfcounter

import (
	"fmt"

	"github.com/psantana5/benchtime/internal/diag"
)

const component = "perfcounter"

// MsgInitFailed is emitted when the counter bank cannot be initialized.
const MsgInitFailed = "ERROR: Could not initialize hpm hardware performance monitor system!"

// HPM drives a hardware performance monitor bank through one session.
//
// If the bank cannot be acquired or initialized, one MsgInitFailed
// diagnostic is emitted and the controller stays inactive: snapshots are
// zero and Finalize reports nothing.
type HPM struct {
	hw     Hardware
	sink   diag.Sink
	events [len(GenericCounters)]EventSelector
	unit   Unit
}

// NewHPM creates a controller programming event3 and event4 into the
// generic counters. A nil sink discards diagnostics.
func NewHPM(hw Hardware, sink diag.Sink, event3, event4 EventSelector) *HPM {
	if sink == nil {
		sink = diag.Discard{}
	}
	return &HPM{
		hw:     hw,
		sink:   sink,
		events: [len(GenericCounters)]EventSelector{event3, event4},
	}
}

// Active reports whether the bank was configured successfully.
func (h *HPM) Active() bool {
	return h.unit != nil
}

// Configure acquires and initializes the bank of the calling execution
// unit and programs the generic counters.
func (h *HPM) Configure() {
	h.release()

	unit, err := h.hw.CurrentUnit()
	if err != nil {
		h.initFailed(err)
		return
	}
	if err := unit.Init(); err != nil {
		_ = unit.Close()
		h.initFailed(err)
		return
	}

	for i, id := range GenericCounters {
		if err := unit.SetEvent(id, h.events[i]); err != nil {
			h.sink.Warn(component, fmt.Sprintf("counter %d: event 0x%x not set: %v", id, uint64(h.events[i]), err))
		}
	}
	h.unit = unit
}

func (h *HPM) initFailed(err error) {
	h.sink.Warn(component, MsgInitFailed)
	h.sink.Info(component, fmt.Sprintf("counter init: %v", err))
}

// SnapshotBefore reads cycles and retired instructions before the region.
func (h *HPM) SnapshotBefore() Snapshot {
	return h.snapshot()
}

// SnapshotAfter reads cycles and retired instructions after the region.
func (h *HPM) SnapshotAfter() Snapshot {
	return h.snapshot()
}

func (h *HPM) snapshot() Snapshot {
	if h.unit == nil {
		return Snapshot{}
	}
	cycles, err := h.unit.Read(CounterCycle)
	if err != nil {
		h.sink.Warn(component, fmt.Sprintf("snapshot: %v", err))
		return Snapshot{}
	}
	instret, err := h.unit.Read(CounterInstret)
	if err != nil {
		h.sink.Warn(component, fmt.Sprintf("snapshot: %v", err))
		return Snapshot{}
	}
	return Snapshot{Cycles: cycles, Instret: instret, Valid: true}
}

// Finalize stops the generic counters, emits one diagnostic line per
// counter and releases the bank. Deltas are computed modulo 2^64 and only
// when both snapshots are valid.
func (h *HPM) Finalize(before, after Snapshot) *Report {
	if h.unit == nil {
		return nil
	}
	defer h.release()

	generic := make([]GenericCounter, 0, len(GenericCounters))
	for i, id := range GenericCounters {
		if err := h.unit.ClearEvent(id, ClearMask); err != nil {
			h.sink.Warn(component, fmt.Sprintf("counter %d: clear failed: %v", id, err))
		}
		value, err := h.unit.Read(id)
		if err != nil {
			h.sink.Warn(component, fmt.Sprintf("counter %d: %v", id, err))
		}
		generic = append(generic, GenericCounter{
			ID:    id,
			Value: value,
			Event: h.events[i],
		})
	}

	report := &Report{
		Cycles:  after.Cycles,
		Instret: after.Instret,
		Generic: generic,
	}
	if before.Valid && after.Valid {
		report.CycleDelta = after.Cycles - before.Cycles
		report.InstretDelta = after.Instret - before.Instret
	} else {
		report.DeltaUnavailable = true
	}
	for _, line := range report.Lines() {
		h.sink.Info(component, line)
	}
	return report
}

func (h *HPM) release() {
	if h.unit == nil {
		return
	}
	if err := h.unit.Close(); err != nil {
		h.sink.Warn(component, fmt.Sprintf("release counters: %v", err))
	}
	h.unit = nil
}
