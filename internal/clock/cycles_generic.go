//go:build !amd64 && !arm64

package clock

// Generic fallback: no cycle counter instruction is wired up, so the
// monotonic clock stands in at nanosecond resolution.

func readCycles() uint64 { return uint64(nanotime()) }

func nativeCycleFrequency() int64 { return 1_000_000_000 }

func cycleCounterName() string { return "nanotime" }
