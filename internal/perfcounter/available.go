//go:build !noperfmon

package perfcounter

// Available reports whether counter support is compiled in.
// Build with -tags noperfmon to remove it.
const Available = true
