package clock

import "fmt"

// Divided scales a source down by a fixed divider: a higher divider gives
// coarser resolution and a longer run before the tick type overflows.
type Divided struct {
	src     Source
	divider int64
}

// WithDivider wraps src so that Capture returns raw/divider and
// TicksPerSecond returns native/divider. A divider of 1 returns src as is.
func WithDivider(src Source, divider int64) (Source, error) {
	if divider < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDivider, divider)
	}
	if divider == 1 {
		return src, nil
	}
	return &Divided{src: src, divider: divider}, nil
}

// Capture returns the underlying reading divided by the divider, rounded
// toward negative infinity. Every bucket is exactly divider ticks wide, so
// an unsigned counter wrapping from 2^64-1 to 0 (-1 to 0 as Ticks) still
// advances by one bucket per divider ticks.
func (d *Divided) Capture() Ticks { return floorDiv(d.src.Capture(), Ticks(d.divider)) }

// floorDiv divides a by a positive b, rounding toward negative infinity.
func floorDiv(a, b Ticks) Ticks {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

// TicksPerSecond returns the underlying resolution divided by the divider.
func (d *Divided) TicksPerSecond() int64 { return d.src.TicksPerSecond() / d.divider }

// Name returns the underlying source name with the divider appended.
func (d *Divided) Name() string { return fmt.Sprintf("%s/%d", d.src.Name(), d.divider) }

// Divider returns the configured divider.
func (d *Divided) Divider() int64 { return d.divider }

// Unwrap returns the undivided source.
func (d *Divided) Unwrap() Source { return d.src }
