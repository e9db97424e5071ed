package perfcounter

import (
	"fmt"
	"strings"

	"github.com/psantana5/benchtime/internal/diag"
)

// Backends selectable by name.
const (
	BackendAuto      = "auto"
	BackendSimulated = "simulated"
)

// Config selects whether and how counters are used.
type Config struct {
	Enabled bool
	Backend string
	Event3  EventSelector
	Event4  EventSelector
}

// DefaultConfig enables counters with the default call and branch events.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Backend: BackendAuto,
		Event3:  DefaultEvent3,
		Event4:  DefaultEvent4,
	}
}

// HardwareFor resolves a backend name.
func HardwareFor(backend string) (Hardware, error) {
	switch strings.ToLower(backend) {
	case "", BackendAuto:
		return Host(), nil
	case BackendSimulated:
		return NewSimulatedBank(), nil
	default:
		return nil, fmt.Errorf("perfcounter: unknown backend %q", backend)
	}
}

// New returns the controller for cfg. Disabled or compiled-out counters
// yield Noop.
func New(cfg Config, sink diag.Sink) (Controller, error) {
	hw, err := HardwareFor(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return NewWithHardware(cfg, hw, sink), nil
}

// NewWithHardware is New with an explicit backend.
func NewWithHardware(cfg Config, hw Hardware, sink diag.Sink) Controller {
	if !Available || !cfg.Enabled || hw == nil {
		return Noop{}
	}
	return NewHPM(hw, sink, cfg.Event3, cfg.Event4)
}
