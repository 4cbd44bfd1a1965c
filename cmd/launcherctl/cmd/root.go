// Package cmd provides the CLI commands for logstash-launcherctl.
package cmd

import (
	"fmt"

	"logstash-launcher/internal/config"
	"logstash-launcher/internal/logging"

	"github.com/spf13/cobra"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	configPath string
	verbose    bool
}

// loadConfig reads the launcher configuration and sets up console logging.
func (o *globalOptions) loadConfig() (*config.LaunchConfig, error) {
	logCfg := logging.ConsoleOnly(logging.DefaultConfig())
	logCfg.Level = "info"
	logCfg.ConsoleLevel = "warn"
	if o.verbose {
		logCfg.Level = "debug"
		logCfg.ConsoleLevel = "debug"
	}
	if err := logging.Setup(logCfg); err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	return config.Load(o.configPath)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "logstash-launcherctl",
		Short: "Inspect how the logstash launcher starts the agent",
		Long: `logstash-launcherctl shares the launcher's configuration and shows what
the launcher would do without starting the agent:
  - print the exact argument vector handed to the interpreter
  - check that the interpreter, archive and directories exist
  - show the effective configuration
  - read or follow the agent's log file`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "launcher configuration file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newArgvCmd(opts),
		newCheckCmd(opts),
		newConfigCmd(opts),
		newLogsCmd(opts),
	)
	return root
}

// Execute runs the command tree against the process arguments.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return NewRootCmd().Execute()
}
