// Package observe records the wall-clock span of a run. It is reported
// next to the measured ticks and never used to compute them.
package observe

import "time"

// Timing records when a run began and ended in wall-clock time.
type Timing struct {
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`

	now func() time.Time
}

// NewTiming starts a timing at the current time.
func NewTiming() *Timing {
	return NewTimingWithClock(time.Now)
}

// NewTimingWithClock starts a timing using now as the time source.
func NewTimingWithClock(now func() time.Time) *Timing {
	return &Timing{StartedAt: now(), now: now}
}

// Complete records the end of the run. Later calls are ignored.
func (t *Timing) Complete() {
	if !t.CompletedAt.IsZero() {
		return
	}
	t.CompletedAt = t.now()
}

// Done reports whether Complete has been called.
func (t *Timing) Done() bool {
	return !t.CompletedAt.IsZero()
}

// Duration returns the run's wall-clock duration, or the time since start
// if it has not completed.
func (t *Timing) Duration() time.Duration {
	if t.CompletedAt.IsZero() {
		return t.now().Sub(t.StartedAt)
	}
	return t.CompletedAt.Sub(t.StartedAt)
}
