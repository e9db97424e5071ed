package clock

import (
	"sort"
	"sync"
)

// Cycles reads the CPU's free-running cycle or timer counter.
//
// Highest resolution of the built-in sources, but the counter may wrap
// quickly on narrow hardware and its rate can drift with frequency
// scaling. Use WithDivider to buy range.
type Cycles struct {
	freq int64
}

// NewCycles returns the cycle counter source. When the hardware does not
// publish its frequency, it is calibrated once against the monotonic clock
// (~50ms, cached for the process).
func NewCycles() *Cycles {
	freq := nativeCycleFrequency()
	if freq <= 0 {
		freq = calibratedCycleFrequency()
	}
	return &Cycles{freq: freq}
}

// Capture returns the raw counter value.
func (c *Cycles) Capture() Ticks { return Ticks(readCycles()) }

// TicksPerSecond is the counter frequency.
func (c *Cycles) TicksPerSecond() int64 { return c.freq }

// Name returns "cycles".
func (c *Cycles) Name() string { return SourceCycles }

// Counter names the hardware counter being read.
func (c *Cycles) Counter() string { return cycleCounterName() }

var (
	calibrateOnce sync.Once
	calibrated    int64
)

func calibratedCycleFrequency() int64 {
	calibrateOnce.Do(func() {
		calibrated = calibrateCycles()
	})
	return calibrated
}

// calibrateCycles busy-waits several short windows and takes the median
// cycles-per-second estimate.
func calibrateCycles() int64 {
	const (
		measurements = 5
		window       = int64(10_000_000) // 10ms in ns
	)

	freqs := make([]int64, 0, measurements)
	for i := 0; i < measurements; i++ {
		startCycles := readCycles()
		startNs := nanotime()
		for nanotime()-startNs < window {
		}
		endCycles := readCycles()
		elapsedNs := nanotime() - startNs

		if elapsedNs <= 0 {
			continue
		}
		freqs = append(freqs, int64(endCycles-startCycles)*1_000_000_000/elapsedNs)
	}

	if len(freqs) == 0 {
		return 1_000_000_000
	}
	sort.Slice(freqs, func(i, j int) bool { return freqs[i] < freqs[j] })
	if f := freqs[len(freqs)/2]; f > 0 {
		return f
	}
	return 1_000_000_000
}
