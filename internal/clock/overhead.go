package clock

import "math"

// DefaultOverheadSamples is the iteration count used by the info command.
const DefaultOverheadSamples = 10_000

// MeasureOverhead returns the smallest delta observed between two
// back-to-back captures over n attempts: the noise floor every
// measurement with src carries.
func MeasureOverhead(src Source, n int) Ticks {
	if n < 1 {
		n = 1
	}

	best := Ticks(math.MaxInt64)
	for i := 0; i < n; i++ {
		t0 := src.Capture()
		delta := src.Capture() - t0
		if delta >= 0 && delta < best {
			best = delta
		}
	}
	if best == Ticks(math.MaxInt64) {
		return 0
	}
	return best
}
