package perfcounter

import (
	"fmt"
	"sync"
)

// Simulated is an in-memory counter bank. Each counter returns its scripted
// values in order, then repeats the last one. Counters with a ramp advance
// by a fixed step on every read. Anything else reads 0.
type Simulated struct {
	mu         sync.Mutex
	scripts    map[CounterID][]uint64
	ramps      map[CounterID]*ramp
	events     map[CounterID]EventSelector
	cleared    map[CounterID]EventSelector
	readErrs   map[CounterID]error
	acquireErr error
	initErr    error
	open       int
}

// NewSimulated creates an empty simulated bank.
func NewSimulated() *Simulated {
	return &Simulated{
		scripts:  make(map[CounterID][]uint64),
		ramps:    make(map[CounterID]*ramp),
		events:   make(map[CounterID]EventSelector),
		cleared:  make(map[CounterID]EventSelector),
		readErrs: make(map[CounterID]error),
	}
}

// Script sets the values successive reads of id return.
func (s *Simulated) Script(id CounterID, values ...uint64) *Simulated {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[id] = append([]uint64(nil), values...)
	return s
}

type ramp struct {
	next, step uint64
}

// Ramp makes successive reads of id return start, start+step, ...
func (s *Simulated) Ramp(id CounterID, start, step uint64) *Simulated {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ramps[id] = &ramp{next: start, step: step}
	return s
}

// NewSimulatedBank returns a bank whose counters all advance, for
// exercising the reporting path on hosts without counter access.
func NewSimulatedBank() *Simulated {
	return NewSimulated().
		Ramp(CounterCycle, 1000, 4000).
		Ramp(CounterInstret, 200, 2400).
		Ramp(Counter3, 0, 16).
		Ramp(Counter4, 0, 64)
}

// FailAcquire makes CurrentUnit return err.
func (s *Simulated) FailAcquire(err error) *Simulated {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquireErr = err
	return s
}

// FailInit makes Unit.Init return err.
func (s *Simulated) FailInit(err error) *Simulated {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initErr = err
	return s
}

// FailRead makes reads of id return err. A nil err clears the failure.
func (s *Simulated) FailRead(id CounterID, err error) *Simulated {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.readErrs, id)
	} else {
		s.readErrs[id] = err
	}
	return s
}

// Event returns the selector programmed into id.
func (s *Simulated) Event(id CounterID) (EventSelector, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.events[id]
	return sel, ok
}

// Cleared returns the mask id was cleared with.
func (s *Simulated) Cleared(id CounterID) (EventSelector, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mask, ok := s.cleared[id]
	return mask, ok
}

// OpenUnits counts units acquired and not yet closed.
func (s *Simulated) OpenUnits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// CurrentUnit implements Hardware.
func (s *Simulated) CurrentUnit() (Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	s.open++
	return &simUnit{s: s}, nil
}

type simUnit struct {
	s      *Simulated
	closed bool
}

func (u *simUnit) Init() error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	return u.s.initErr
}

func (u *simUnit) SetEvent(id CounterID, sel EventSelector) error {
	if id != Counter3 && id != Counter4 {
		return fmt.Errorf("counter %d has a fixed event", id)
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	u.s.events[id] = sel
	delete(u.s.cleared, id)
	return nil
}

func (u *simUnit) Read(id CounterID) (uint64, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.readErrs[id]; err != nil {
		return 0, err
	}
	if r, ok := u.s.ramps[id]; ok {
		v := r.next
		r.next += r.step
		return v, nil
	}
	values := u.s.scripts[id]
	switch len(values) {
	case 0:
		return 0, nil
	case 1:
		return values[0], nil
	}
	v := values[0]
	u.s.scripts[id] = values[1:]
	return v, nil
}

func (u *simUnit) ClearEvent(id CounterID, mask EventSelector) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	u.s.cleared[id] = mask
	u.s.events[id] &^= mask
	return nil
}

func (u *simUnit) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	u.s.open--
	return nil
}
