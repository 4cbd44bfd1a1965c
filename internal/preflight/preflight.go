// Package preflight checks that the paths in a launch configuration exist
// before the agent is started against them.
package preflight

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"logstash-launcher/internal/config"
	launchererrors "logstash-launcher/internal/errors"
	"logstash-launcher/internal/launcher"
	"logstash-launcher/internal/logging"

	"go.uber.org/zap"
)

// Status represents the outcome of a check.
type Status string

const (
	StatusOK   Status = "OK"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string // e.g. "interpreter", "jar"
	Status  Status
	Message string
	Err     error
}

// OK returns true unless the check failed.
func (r Result) OK() bool {
	return r.Status != StatusFail
}

func ok(name, format string, args ...any) Result {
	return Result{Name: name, Status: StatusOK, Message: fmt.Sprintf(format, args...)}
}

func warn(name, format string, args ...any) Result {
	return Result{Name: name, Status: StatusWarn, Message: fmt.Sprintf(format, args...)}
}

func fail(name string, err error, format string, args ...any) Result {
	return Result{Name: name, Status: StatusFail, Message: fmt.Sprintf(format, args...), Err: err}
}

// FileSystem abstracts the lookups a check needs.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	Glob(pattern string) ([]string, error)
	LookPath(file string) (string, error)
}

// RealFS uses the operating system.
type RealFS struct{}

// Stat implements FileSystem.
func (RealFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

// Glob implements FileSystem.
func (RealFS) Glob(pattern string) ([]string, error) { return filepath.Glob(pattern) }

// LookPath implements FileSystem.
func (RealFS) LookPath(file string) (string, error) { return exec.LookPath(file) }

// Checker runs every check against one configuration.
type Checker struct {
	cfg    *config.LaunchConfig
	fs     FileSystem
	logger *zap.Logger
}

// New creates a checker. A nil fsys means RealFS.
func New(cfg *config.LaunchConfig, fsys FileSystem, logger *zap.Logger) *Checker {
	if fsys == nil {
		fsys = RealFS{}
	}
	if logger == nil {
		logger = logging.L()
	}
	return &Checker{cfg: cfg, fs: fsys, logger: logger}
}

// Run executes all checks in a fixed order and returns their results.
func (c *Checker) Run() []Result {
	results := []Result{
		c.checkInterpreter(),
		c.checkJar(),
		c.checkConfigDir(),
		c.checkTmpDir(),
		c.checkLogDir(),
	}
	for _, r := range results {
		c.logger.Debug("preflight_check",
			logging.Check(r.Name),
			zap.String("status", string(r.Status)),
			zap.String("message", r.Message),
		)
	}
	return results
}

// Err summarizes failed results, or returns nil when none failed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.OK() {
			failed = append(failed, r.Name)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return launchererrors.NewPreflightError(failed)
}

func (c *Checker) checkInterpreter() Result {
	const name = "interpreter"
	path, err := launcher.Resolve(c.cfg.Interpreter, c.fs.LookPath)
	if err != nil {
		if launchererrors.GetErrorCode(err) == launchererrors.ErrCodeExecPermissionDenied {
			return fail(name, err, "%s is not executable", c.cfg.Interpreter)
		}
		return fail(name, err, "%s not found on PATH", c.cfg.Interpreter)
	}
	return ok(name, "%s", path)
}

func (c *Checker) checkJar() Result {
	const name = "jar"
	info, err := c.fs.Stat(c.cfg.JarPath)
	if err != nil {
		return statFailure(name, c.cfg.JarPath, err)
	}
	if !info.Mode().IsRegular() {
		return fail(name, nil, "%s is not a regular file", c.cfg.JarPath)
	}
	return ok(name, "%s (%d bytes)", c.cfg.JarPath, info.Size())
}

func (c *Checker) checkConfigDir() Result {
	const name = "config_dir"
	if r, isDir := c.checkDir(name, c.cfg.ConfigDir); !isDir {
		return r
	}
	matches, err := c.fs.Glob(filepath.Join(c.cfg.ConfigDir, "*.conf"))
	if err != nil {
		return fail(name, err, "cannot list %s", c.cfg.ConfigDir)
	}
	if len(matches) == 0 {
		return warn(name, "%s contains no *.conf files", c.cfg.ConfigDir)
	}
	return ok(name, "%s (%d config files)", c.cfg.ConfigDir, len(matches))
}

func (c *Checker) checkTmpDir() Result {
	const name = "tmp_dir"
	if c.cfg.TmpDir == "" {
		return ok(name, "not set, JVM default applies")
	}
	r, _ := c.checkDir(name, c.cfg.TmpDir)
	return r
}

func (c *Checker) checkLogDir() Result {
	r, _ := c.checkDir("log_dir", filepath.Dir(c.cfg.LogPath))
	return r
}

// checkDir reports whether path is an existing directory.
func (c *Checker) checkDir(name, path string) (Result, bool) {
	info, err := c.fs.Stat(path)
	if err != nil {
		return statFailure(name, path, err), false
	}
	if !info.IsDir() {
		return fail(name, nil, "%s is not a directory", path), false
	}
	return ok(name, "%s", path), true
}

func statFailure(name, path string, err error) Result {
	switch {
	case os.IsNotExist(err):
		return fail(name, err, "%s not found", path)
	case os.IsPermission(err):
		return fail(name, err, "%s: permission denied", path)
	default:
		return fail(name, err, "%s: stat failed: %v", path, err)
	}
}
