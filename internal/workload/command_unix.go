//go:build unix

package workload

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the child in its own process group so terminal
// signals meant for benchtime do not reach it mid-measurement.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
}
