//go:build !unix

package launcher

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessExecutor_ForwardsChildStatus(t *testing.T) {
	origStart, origExit := startFunc, exitFunc
	defer func() { startFunc, exitFunc = origStart, origExit }()

	var started *exec.Cmd
	startFunc = func(c *exec.Cmd) error {
		started = c
		return nil
	}
	status := -1
	exitFunc = func(code int) { status = code }

	cmd := &Command{Path: `C:\java\bin\java.exe`, Argv: []string{"logstash", "-Xmx32m"}, Env: []string{"A=1"}}
	require.NoError(t, (&ProcessExecutor{}).Exec(cmd))

	assert.Equal(t, 0, status)
	assert.Equal(t, cmd.Path, started.Path)
	assert.Equal(t, cmd.Argv, started.Args)
	assert.Equal(t, cmd.Env, started.Env)
}

func TestProcessExecutor_StartFailureReturns(t *testing.T) {
	origStart, origExit := startFunc, exitFunc
	defer func() { startFunc, exitFunc = origStart, origExit }()

	startErr := errors.New("file does not exist")
	startFunc = func(*exec.Cmd) error { return startErr }
	exitFunc = func(int) { t.Fatal("must not exit when the child never started") }

	err := (&ProcessExecutor{}).Exec(&Command{Path: "java", Argv: []string{"logstash"}})
	assert.ErrorIs(t, err, startErr)
}
