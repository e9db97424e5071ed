//go:build !linux

package perfcounter

// Host returns the counter backend for this platform.
func Host() Hardware {
	return unsupported{}
}

type unsupported struct{}

func (unsupported) CurrentUnit() (Unit, error) {
	return nil, ErrUnsupported
}
