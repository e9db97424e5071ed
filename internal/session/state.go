package session

// State of a timing session.
type State string

const (
	StateIdle    State = "idle"    // Created, never started
	StateStarted State = "started" // Start mark captured, region running
	StateStopped State = "stopped" // Stop mark captured, elapsed available
)

// validTransitions maps from-state to allowed to-states
var validTransitions = map[State]map[State]bool{
	StateIdle: {
		StateStarted: true, // Idle → Started (first start)
	},
	StateStarted: {
		StateStopped: true, // Started → Stopped (region ended)
	},
	StateStopped: {
		StateStarted: true, // Stopped → Started (session reused)
	},
}

// CanTransition reports whether from → to is allowed.
func CanTransition(from, to State) bool {
	return validTransitions[from][to]
}
