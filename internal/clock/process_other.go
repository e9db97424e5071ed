//go:build !(linux || darwin || freebsd)

package clock

// NewProcessCPU falls back to the monotonic clock where per-process CPU
// time is not exposed through clock_gettime.
func NewProcessCPU() Source {
	return NewMonotonic()
}
