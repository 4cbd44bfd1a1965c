//go:build unix

package launcher

import "golang.org/x/sys/unix"

var execFunc = unix.Exec

// ProcessExecutor replaces the process image with execve(2).
type ProcessExecutor struct{}

// Exec replaces the current process with cmd. cmd.Path must already be
// resolved.
func (e *ProcessExecutor) Exec(cmd *Command) error {
	// #nosec G204 -- the interpreter and its arguments come from the
	// launcher's own configuration and command line.
	return execFunc(cmd.Path, cmd.Argv, cmd.Env)
}
