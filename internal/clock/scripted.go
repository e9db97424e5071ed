package clock

import "sync"

// Scripted returns a fixed sequence of values, one per Capture. Once the
// sequence is exhausted the last value repeats.
type Scripted struct {
	mu     sync.Mutex
	tps    int64
	values []Ticks
	next   int
}

// NewScripted creates a scripted source with the given resolution.
func NewScripted(ticksPerSecond int64, values ...Ticks) *Scripted {
	return &Scripted{tps: ticksPerSecond, values: values}
}

// Capture returns the next scripted value, or 0 if none were given.
func (s *Scripted) Capture() Ticks {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 {
		return 0
	}
	if s.next >= len(s.values) {
		return s.values[len(s.values)-1]
	}
	v := s.values[s.next]
	s.next++
	return v
}

// TicksPerSecond returns the configured resolution.
func (s *Scripted) TicksPerSecond() int64 { return s.tps }

// Name returns "scripted".
func (s *Scripted) Name() string { return "scripted" }

// Captures reports how many values have been consumed.
func (s *Scripted) Captures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
