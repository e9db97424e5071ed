package workload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command runs an external program as the timed region. Process start-up
// is inside the region.
type Command struct {
	Path   string
	Args   []string
	Stdout io.Writer
	Stderr io.Writer

	cmd      *exec.Cmd
	exitCode int
	pid      int
}

// NewCommand returns a workload running path with args.
func NewCommand(path string, args ...string) *Command {
	return &Command{Path: path, Args: args, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (c *Command) Name() string {
	return strings.TrimSpace("exec " + c.Path + " " + strings.Join(c.Args, " "))
}

// Prepare resolves the binary so lookup is not timed.
func (c *Command) Prepare(ctx context.Context) error {
	path, err := exec.LookPath(c.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", c.Path, err)
	}
	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	setProcessGroup(cmd)
	c.cmd = cmd
	c.exitCode = 0
	return nil
}

// Run starts the command and waits for it. A non-zero exit is recorded in
// ExitCode and is not an error.
func (c *Command) Run(context.Context) error {
	if c.cmd == nil {
		return errors.New("command not prepared")
	}
	cmd := c.cmd
	c.cmd = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	c.pid = cmd.Process.Pid

	err := cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		c.exitCode = 0
	case errors.As(err, &exitErr):
		c.exitCode = exitErr.ExitCode()
	default:
		return fmt.Errorf("failed to wait: %w", err)
	}
	return nil
}

// ExitCode is the status of the last Run.
func (c *Command) ExitCode() int { return c.exitCode }

// PID is the process id of the last Run.
func (c *Command) PID() int { return c.pid }
