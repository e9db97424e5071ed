// Package perfcounter brackets a timed region with hardware performance
// counter readings: cycles, retired instructions and two generic event
// counters.
//
// Counter results are diagnostics. They are reported next to the timing
// result and never feed back into it. When counters are unavailable every
// operation degrades to a no-op and timing proceeds unchanged.
package perfcounter

import (
	"errors"
	"fmt"
)

// CounterID numbers counters the way the hardware performance monitor does.
type CounterID int

const (
	CounterCycle   CounterID = 0
	CounterTime    CounterID = 1
	CounterInstret CounterID = 2
	Counter3       CounterID = 3
	Counter4       CounterID = 4
)

// GenericCounters are the event counters with caller-selectable events.
var GenericCounters = [2]CounterID{Counter3, Counter4}

// EventSelector is the raw event programmed into a generic counter:
// event class in the low byte, event mask bits above it.
type EventSelector uint64

// Instruction-commit class events.
const (
	EventClass0 EventSelector = 0
	EventID14   EventSelector = 1 << 14 // conditional branch retired
	EventID15   EventSelector = 1 << 15 // JAL (call) retired

	// DefaultEvent3 counts call instructions on Counter3.
	DefaultEvent3 = EventID15 | EventClass0
	// DefaultEvent4 counts conditional branches on Counter4.
	DefaultEvent4 = EventID14 | EventClass0

	// ClearMask disables every event bit on a counter.
	ClearMask EventSelector = 0xffffffff
)

// ErrUnsupported is returned by backends on platforms without counter access.
var ErrUnsupported = errors.New("perfcounter: hardware counters not supported on this platform")

// Hardware is the counter capability of the machine.
type Hardware interface {
	// CurrentUnit acquires the counter bank of the calling execution unit.
	// The caller must Close the unit on the same goroutine.
	CurrentUnit() (Unit, error)
}

// Unit is one execution unit's counter bank.
type Unit interface {
	// Init resets all counters to a known state.
	Init() error
	// SetEvent programs a generic counter.
	SetEvent(id CounterID, sel EventSelector) error
	// Read returns the current value of a counter. Reading a counter that
	// is not open is an error.
	Read(id CounterID) (uint64, error)
	// ClearEvent removes the masked event bits from a counter, stopping it.
	ClearEvent(id CounterID, mask EventSelector) error
	// Close releases the bank.
	Close() error
}

// Snapshot holds the free-running counters at one point in time.
type Snapshot struct {
	Cycles  uint64 `json:"cycles" yaml:"cycles"`
	Instret uint64 `json:"instret" yaml:"instret"`
	Valid   bool   `json:"valid" yaml:"valid"`
}

// GenericCounter is the final state of a generic counter.
type GenericCounter struct {
	ID    CounterID     `json:"id" yaml:"id"`
	Value uint64        `json:"value" yaml:"value"`
	Event EventSelector `json:"event" yaml:"event"`
}

// Report is the counter summary for one session.
type Report struct {
	Cycles       uint64           `json:"cycles" yaml:"cycles"`
	CycleDelta   uint64           `json:"cycle_delta" yaml:"cycle_delta"`
	Instret      uint64           `json:"instret" yaml:"instret"`
	InstretDelta uint64           `json:"instret_delta" yaml:"instret_delta"`
	Generic      []GenericCounter `json:"generic" yaml:"generic"`

	// DeltaUnavailable is set when a snapshot read failed; CycleDelta and
	// InstretDelta are then zero and carry no information.
	DeltaUnavailable bool `json:"delta_unavailable,omitempty" yaml:"delta_unavailable,omitempty"`
}

// HasDelta reports whether r carries usable cycle and instret deltas.
func (r *Report) HasDelta() bool {
	return r != nil && !r.DeltaUnavailable
}

// Lines renders the report as diagnostic lines.
func (r *Report) Lines() []string {
	var lines []string
	if r.DeltaUnavailable {
		lines = []string{
			fmt.Sprintf("Counter %d holds %d (cycles), delta unavailable", CounterCycle, r.Cycles),
			fmt.Sprintf("Counter %d holds %d (instret), delta unavailable", CounterInstret, r.Instret),
		}
	} else {
		lines = []string{
			fmt.Sprintf("Counter %d holds %d (cycles) for a delta of %d", CounterCycle, r.Cycles, r.CycleDelta),
			fmt.Sprintf("Counter %d holds %d (instret) for a delta of %d", CounterInstret, r.Instret, r.InstretDelta),
		}
	}
	for _, g := range r.Generic {
		lines = append(lines, fmt.Sprintf("Counter %d holds %d for event 0x%x", g.ID, g.Value, uint64(g.Event)))
	}
	return lines
}

// Controller sequences counters around a timed region.
//
// Configure runs before the clock start capture, SnapshotBefore
// immediately before it and SnapshotAfter immediately after the region.
// Finalize stops the counters and emits the report.
type Controller interface {
	Configure()
	SnapshotBefore() Snapshot
	SnapshotAfter() Snapshot
	Finalize(before, after Snapshot) *Report
	Active() bool
}
