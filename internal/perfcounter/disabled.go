//go:build noperfmon

package perfcounter

// Available reports whether counter support is compiled in.
// This build was made with -tags noperfmon: New always returns Noop.
const Available = false
