package clock

import (
	_ "unsafe" // Required for go:linkname
)

// nanotime returns the runtime's monotonic clock in nanoseconds.
// It avoids building a time.Time on every capture.
//
//go:linkname nanotime runtime.nanotime
func nanotime() int64

// Monotonic reads the Go runtime monotonic clock.
type Monotonic struct{}

// NewMonotonic returns the monotonic nanosecond source.
func NewMonotonic() *Monotonic {
	return &Monotonic{}
}

// Capture returns nanoseconds since an arbitrary point.
func (Monotonic) Capture() Ticks { return Ticks(nanotime()) }

// TicksPerSecond is 1e9.
func (Monotonic) TicksPerSecond() int64 { return 1_000_000_000 }

// Name returns "monotonic".
func (Monotonic) Name() string { return SourceMonotonic }
