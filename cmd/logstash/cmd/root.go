// Package cmd provides the command line of the logstash launcher.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"logstash-launcher/internal/config"
	launchererrors "logstash-launcher/internal/errors"
	"logstash-launcher/internal/launcher"
	"logstash-launcher/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runner carries one invocation of the launcher.
type runner struct {
	invokedAs  string
	configPath string
	stderr     io.Writer
	options    []launcher.Option
}

// newRootCmd builds the root command. It recognizes no flags: every
// argument, including --help, belongs to the agent.
func newRootCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   filepath.Base(r.invokedAs) + " [agent arguments...]",
		Short: "Start the logstash agent",
		Long: `Start the logstash agent under the Java interpreter.

The launcher replaces itself with:

  java -Xmx32m -Djava.io.tmpdir=/var/lib/logstash/ -jar /usr/share/logstash/logstash.jar \
    agent -f /etc/logstash/conf.d --log /var/log/logstash/logstash.log [agent arguments...]

Fields of the base command can be overridden in ` + config.DefaultPath + `,
where launcher_log also names an optional JSONL file for the launcher's own
entries. Without it the launcher writes no file.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Main puts "--" in front so cobra never takes a forwarded
			// argument for one of its hidden commands.
			if len(args) > 0 && args[0] == "--" {
				args = args[1:]
			}
			return r.run(args)
		},
	}
}

func (r *runner) run(args []string) error {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		// Main reports it; there is no file to record it in yet.
		return err
	}
	r.setupLogging(cfg)

	// Failures reach stderr through Main, so the launcher itself only
	// records to the optional file.
	opts := append([]launcher.Option{launcher.WithLogger(logging.File())}, r.options...)
	return launcher.New(cfg, opts...).Launch(r.invokedAs, args)
}

// setupLogging keeps the launcher on an error-level stderr console unless
// cfg names a launcher log file. A file that cannot be opened is reported
// and skipped; it must not keep the agent from starting.
func (r *runner) setupLogging(cfg *config.LaunchConfig) {
	consoleCfg := logging.ConsoleOnly(logging.DefaultConfig())
	consoleCfg.Console = r.stderr
	if cfg.LauncherLog == "" {
		_ = logging.Setup(consoleCfg)
		return
	}

	fileCfg := *consoleCfg
	fileCfg.EnableFile = true
	fileCfg.LogDir = filepath.Dir(cfg.LauncherLog)
	fileCfg.LogFile = filepath.Base(cfg.LauncherLog)
	if err := logging.Setup(&fileCfg); err != nil {
		_ = logging.Setup(consoleCfg)
		logging.L().Error("launcher_log_unavailable",
			zap.Error(err),
			logging.Path(cfg.LauncherLog),
		)
	}
}

// Main runs the launcher for argv, argv[0] being the launcher's own
// invocation path, and returns the process exit status. On success it does
// not return.
func Main(argv []string, stderr io.Writer, configPath string, opts ...launcher.Option) int {
	invokedAs := ""
	if len(argv) > 0 {
		invokedAs = argv[0]
		argv = argv[1:]
	}

	r := &runner{invokedAs: invokedAs, configPath: configPath, stderr: stderr, options: opts}
	root := newRootCmd(r)
	root.SetArgs(append([]string{"--"}, argv...))

	err := root.Execute()
	defer func() { _ = logging.Close() }()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", filepath.Base(invokedAs), err)
		return launchererrors.ExitCode(err)
	}
	return 0
}

// Execute runs the launcher for the current process.
func Execute() int {
	return Main(os.Args, os.Stderr, config.DefaultPath)
}
