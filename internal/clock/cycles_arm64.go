//go:build arm64

package clock

// cntvct reads the virtual counter CNTVCT_EL0.
// Implemented in cycles_arm64.s
//
//go:noescape
func cntvct() uint64

// cntfrq reads the counter frequency CNTFRQ_EL0.
// Implemented in cycles_arm64.s
//
//go:noescape
func cntfrq() uint64

func readCycles() uint64 { return cntvct() }

func nativeCycleFrequency() int64 { return int64(cntfrq()) }

func cycleCounterName() string { return "cntvct_el0" }
