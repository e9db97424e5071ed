// Package session brackets a timed region with clock captures and,
// optionally, hardware counter snapshots.
//
// A Session is owned by one goroutine. Start and Stop must be called from
// the goroutine that runs the timed region, because counter backends may
// be bound to the calling thread.
package session

import (
	"github.com/psantana5/benchtime/internal/clock"
	"github.com/psantana5/benchtime/internal/perfcounter"
)

// Session is a single-use-at-a-time timer. It may be restarted after Stop.
type Session struct {
	src  clock.Source
	ctrl perfcounter.Controller

	state     State
	startMark clock.Ticks
	stopMark  clock.Ticks

	before perfcounter.Snapshot
	report *perfcounter.Report
}

// New creates an idle session. A nil controller disables counters.
func New(src clock.Source, ctrl perfcounter.Controller) *Session {
	if ctrl == nil {
		ctrl = perfcounter.Noop{}
	}
	return &Session{src: src, ctrl: ctrl, state: StateIdle}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Source returns the clock the session captures from.
func (s *Session) Source() clock.Source { return s.src }

// Start begins the timed region. Counters are configured and snapshotted
// first; the start mark is the last thing captured before returning.
func (s *Session) Start() error {
	if !CanTransition(s.state, StateStarted) {
		return &StateError{Op: "start", State: s.state, Err: ErrInvalidTransition}
	}

	s.report = nil
	s.ctrl.Configure()
	s.before = s.ctrl.SnapshotBefore()
	s.state = StateStarted
	s.startMark = s.src.Capture()
	return nil
}

// Stop ends the timed region. The counter snapshot is taken first, then
// the stop mark; counters are finalized after both.
func (s *Session) Stop() error {
	if !CanTransition(s.state, StateStopped) {
		return &StateError{Op: "stop", State: s.state, Err: ErrInvalidTransition}
	}

	after := s.ctrl.SnapshotAfter()
	s.stopMark = s.src.Capture()
	s.state = StateStopped

	s.report = s.ctrl.Finalize(s.before, after)
	s.before = perfcounter.Snapshot{}
	return nil
}

// Elapsed returns stop mark minus start mark.
func (s *Session) Elapsed() (clock.Ticks, error) {
	if s.state != StateStopped {
		return 0, &StateError{Op: "elapsed", State: s.state, Err: ErrNotStopped}
	}
	return s.stopMark - s.startMark, nil
}

// Marks returns the raw start and stop captures.
func (s *Session) Marks() (start, stop clock.Ticks) {
	return s.startMark, s.stopMark
}

// Counters returns the counter report from the last Stop, or nil when
// counters were disabled or unavailable.
func (s *Session) Counters() *perfcounter.Report {
	return s.report
}
