//go:build amd64

package clock

// rdtsc reads the Time Stamp Counter.
// Implemented in cycles_amd64.s
//
//go:noescape
func rdtsc() uint64

func readCycles() uint64 { return rdtsc() }

// nativeCycleFrequency returns 0: the TSC rate is not architecturally
// visible, so it is calibrated.
func nativeCycleFrequency() int64 { return 0 }

func cycleCounterName() string { return "rdtsc" }
