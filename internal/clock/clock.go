// Package clock wraps the platform time sources a benchmark can be timed
// with behind a single capture primitive and a fixed resolution.
//
// Implementations:
//   - Monotonic: Go runtime monotonic clock (nanoseconds)
//   - ProcessCPU: CPU time consumed by this process (nanoseconds)
//   - Cycles: raw CPU cycle/timer counter (RDTSC, CNTVCT_EL0)
//   - Scripted: fixed sequence of values for tests and simulation
//
// Any source can be wrapped WithDivider to trade resolution for range.
package clock

import (
	"errors"
	"fmt"
	"strings"
)

// Ticks is an opaque value in a source's clock domain. Differences between
// two captures from the same source are elapsed ticks.
//
// Sources backed by unsigned counters store the raw bits; int64 subtraction
// wraps the same way the hardware does, so differences stay correct.
type Ticks int64

// Source is a monotonic time source.
//
// Capture must be cheap and, more importantly, take the same time on every
// call: its overhead is not subtracted from measurements.
type Source interface {
	// Capture reads the current clock value. It has no side effects.
	Capture() Ticks

	// TicksPerSecond is the fixed resolution of Capture values.
	TicksPerSecond() int64

	// Name identifies the source in reports.
	Name() string
}

// Names of the configurable sources.
const (
	SourceMonotonic = "monotonic"
	SourceProcess   = "process"
	SourceCycles    = "cycles"
)

var (
	// ErrUnknownSource is returned by New for an unrecognised source name.
	ErrUnknownSource = errors.New("clock: unknown source")

	// ErrInvalidDivider is returned when a resolution divider is below 1.
	ErrInvalidDivider = errors.New("clock: divider must be >= 1")
)

// Sources lists the names New accepts.
func Sources() []string {
	return []string{SourceMonotonic, SourceProcess, SourceCycles}
}

// Known reports whether New accepts name. The empty name selects
// monotonic.
func Known(name string) bool {
	switch strings.ToLower(name) {
	case "", SourceMonotonic, SourceProcess, SourceCycles:
		return true
	}
	return false
}

// New builds the named source and applies the resolution divider.
func New(name string, divider int64) (Source, error) {
	var src Source
	switch strings.ToLower(name) {
	case "", SourceMonotonic:
		src = NewMonotonic()
	case SourceProcess:
		src = NewProcessCPU()
	case SourceCycles:
		src = NewCycles()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return WithDivider(src, divider)
}
