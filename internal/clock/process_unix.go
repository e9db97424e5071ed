//go:build linux || darwin || freebsd

package clock

import (
	"golang.org/x/sys/unix"
)

// ProcessCPU reads the CPU time consumed by the whole process plus every
// child it has waited for, so a workload run as a subprocess is counted
// once it exits. Time spent blocked does not count.
type ProcessCPU struct{}

// NewProcessCPU returns the process CPU time source.
func NewProcessCPU() Source {
	return &ProcessCPU{}
}

// Capture returns process and reaped-children CPU nanoseconds. A failed
// process read returns 0, which shows up as an implausible elapsed value
// rather than a crash mid-run.
func (ProcessCPU) Capture() Ticks {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_PROCESS_CPUTIME_ID, &ts); err != nil {
		return 0
	}
	return Ticks(ts.Nano() + childrenCPU())
}

// childrenCPU returns user plus system time of terminated, waited-for
// children, or 0 if it cannot be read.
func childrenCPU() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_CHILDREN, &ru); err != nil {
		return 0
	}
	return unix.TimevalToNsec(ru.Utime) + unix.TimevalToNsec(ru.Stime)
}

// TicksPerSecond is 1e9.
func (ProcessCPU) TicksPerSecond() int64 { return 1_000_000_000 }

// Name returns "process".
func (ProcessCPU) Name() string { return SourceProcess }
