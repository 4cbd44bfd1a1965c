// Package launcher starts the logstash agent by replacing the current process
// with the Java interpreter.
//
// On Unix the replacement is a real execve(2): the agent keeps the launcher's
// PID, open descriptors and environment, and Launch never returns on success.
// Other platforms have no exec; there the launcher starts the interpreter as
// a child, waits for it and exits with its status, so the agent runs under a
// different PID than the launcher.
package launcher

import (
	"errors"
	"io/fs"
	"os/exec"

	"logstash-launcher/internal/config"
	launchererrors "logstash-launcher/internal/errors"
	"logstash-launcher/internal/logging"

	"go.uber.org/zap"
)

// State is the launcher's position in its single-use lifecycle.
type State int

const (
	// Preparing covers everything before the exec call.
	Preparing State = iota
	// Replaced means the exec call succeeded.
	Replaced
	// Failed means the interpreter could not be located or started.
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Preparing:
		return "preparing"
	case Replaced:
		return "replaced"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Executor replaces the current process with cmd.
type Executor interface {
	// Exec does not return on success.
	Exec(cmd *Command) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(cmd *Command) error

// Exec implements Executor.
func (f ExecutorFunc) Exec(cmd *Command) error {
	return f(cmd)
}

// Launcher builds and executes the agent command line.
type Launcher struct {
	cfg      *config.LaunchConfig
	executor Executor
	lookPath func(file string) (string, error)
	logger   *zap.Logger
	state    State
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithExecutor replaces the process executor.
func WithExecutor(e Executor) Option {
	return func(l *Launcher) { l.executor = e }
}

// WithLookPath replaces the search-path lookup.
func WithLookPath(fn func(file string) (string, error)) Option {
	return func(l *Launcher) { l.lookPath = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Launcher) { l.logger = logger }
}

// New creates a launcher for cfg. A nil cfg means config.Default().
func New(cfg *config.LaunchConfig, opts ...Option) *Launcher {
	if cfg == nil {
		cfg = config.Default()
	}
	l := &Launcher{
		cfg:      cfg,
		executor: &ProcessExecutor{},
		lookPath: exec.LookPath,
		logger:   logging.L(),
		state:    Preparing,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State reports where the launcher is in its lifecycle.
func (l *Launcher) State() State {
	return l.state
}

// Command returns what Launch would execute, without resolving the
// interpreter or executing anything.
func (l *Launcher) Command(invokedAs string, extra []string) *Command {
	return Build(l.cfg, invokedAs, extra)
}

// Launch replaces the current process with the agent. It only returns on
// failure, with an error matching launchererrors.ErrExecutionFailure.
func (l *Launcher) Launch(invokedAs string, extra []string) error {
	cmd := Build(l.cfg, invokedAs, extra)

	resolved, err := l.resolve(cmd.Path)
	if err != nil {
		return l.fail(err, cmd)
	}
	name := cmd.Path
	cmd.Path = resolved

	l.logger.Info("launch_exec",
		logging.Interpreter(name),
		logging.Path(resolved),
		logging.Argv(cmd.Argv),
		logging.Count(len(extra)),
	)
	// Nothing buffered survives the exec.
	_ = logging.Sync()

	if err := l.executor.Exec(cmd); err != nil {
		return l.fail(classifyExecError(resolved, err), cmd)
	}
	l.state = Replaced
	return nil
}

func (l *Launcher) resolve(name string) (string, error) {
	return Resolve(name, l.lookPath)
}

// Resolve finds name on the search path the way execvp(3) does, including
// names relative to the current directory. A nil lookPath means
// exec.LookPath. Failures are classified as not found or permission denied.
func Resolve(name string, lookPath func(file string) (string, error)) (string, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(name)
	if err != nil && errors.Is(err, exec.ErrDot) {
		err = nil
	}
	if err == nil {
		return path, nil
	}
	if errors.Is(err, fs.ErrPermission) {
		return "", launchererrors.NewExecPermissionDeniedError(name, err)
	}
	return "", launchererrors.NewExecNotFoundError(name, err)
}

func (l *Launcher) fail(err error, cmd *Command) error {
	l.state = Failed
	l.logger.Error("launch_failed",
		zap.Error(err),
		logging.ErrorCode(string(launchererrors.GetErrorCode(err))),
		logging.Path(cmd.Path),
		logging.Argv(cmd.Argv),
	)
	_ = logging.Sync()
	return err
}

func classifyExecError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return launchererrors.NewExecPermissionDeniedError(path, err)
	case errors.Is(err, fs.ErrNotExist):
		return launchererrors.NewExecNotFoundError(path, err)
	default:
		return launchererrors.NewExecFailedError(path, err)
	}
}
