//go:build !unix

package launcher

import (
	"errors"
	"os"
	"os/exec"
)

var (
	startFunc = func(c *exec.Cmd) error { return c.Run() }
	exitFunc  = os.Exit
)

// ProcessExecutor emulates exec where the platform has none: it runs cmd as
// a child with the launcher's stdio, waits for it and exits with the
// child's status. The agent therefore runs under its own PID.
type ProcessExecutor struct{}

// Exec runs cmd to completion and exits. It returns only if the child
// could not be started.
func (e *ProcessExecutor) Exec(cmd *Command) error {
	c := &exec.Cmd{
		Path:   cmd.Path,
		Args:   cmd.Argv,
		Env:    cmd.Env,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	err := startFunc(c)
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		exitFunc(0)
	case errors.As(err, &exitErr):
		exitFunc(exitErr.ExitCode())
	default:
		return err
	}
	return nil
}
