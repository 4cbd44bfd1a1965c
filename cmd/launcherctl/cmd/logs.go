package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"logstash-launcher/internal/agentlog"
	"logstash-launcher/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// LogsOptions holds options for the logs command.
type LogsOptions struct {
	Lines    int
	Follow   bool
	MinLevel string
	JSON     bool
	// Path overrides the configured agent log path.
	Path string
}

// DefaultLogsOptions returns the default logs options.
func DefaultLogsOptions() *LogsOptions {
	return &LogsOptions{
		Lines: 20,
	}
}

// LogsRunner prints and optionally follows the agent log.
type LogsRunner struct {
	options *LogsOptions
	reader  *agentlog.Reader
	out     io.Writer
	logger  *zap.Logger
}

// NewLogsRunner creates a runner reading path.
func NewLogsRunner(opts *LogsOptions, path string, out io.Writer) *LogsRunner {
	if opts == nil {
		opts = DefaultLogsOptions()
	}
	if opts.Path != "" {
		path = opts.Path
	}
	logger := logging.L().With(zap.String("command", "logs"), logging.Path(path))
	return &LogsRunner{
		options: opts,
		reader:  agentlog.NewReader(path, logger),
		out:     out,
		logger:  logger,
	}
}

// Run prints the last lines and, in follow mode, keeps printing new ones
// until ctx is cancelled or the process is interrupted.
func (r *LogsRunner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			r.logger.Info("received_signal", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	entries, offset, err := r.reader.Last(ctx, r.options.Lines)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := r.print(e); err != nil {
			return err
		}
	}

	if !r.options.Follow {
		return nil
	}

	r.logger.Debug("following_agent_log")
	ch := make(chan *agentlog.Entry, 100)
	errCh := make(chan error, 1)
	go func() { errCh <- r.reader.Follow(ctx, offset, ch) }()

	for {
		select {
		case e := <-ch:
			if err := r.print(e); err != nil {
				return err
			}
		case err := <-errCh:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func (r *LogsRunner) print(e *agentlog.Entry) error {
	if !e.AtLeast(r.options.MinLevel) {
		return nil
	}
	if r.options.JSON {
		data, err := e.ToJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(r.out, string(data))
		return err
	}
	_, err := fmt.Fprintln(r.out, e.Raw)
	return err
}

func newLogsCmd(global *globalOptions) *cobra.Command {
	opts := DefaultLogsOptions()

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the agent's log file",
		Long: `Show the last lines of the log file the agent writes with --log, and
optionally keep following it across log rotation.

Examples:
  logstash-launcherctl logs
  logstash-launcherctl logs -n 100 --level warn
  logstash-launcherctl logs --follow --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			return NewLogsRunner(opts, cfg.LogPath, cmd.OutOrStdout()).Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&opts.Lines, "lines", "n", 20, "number of trailing lines to show (0 for all)")
	cmd.Flags().BoolVarP(&opts.Follow, "follow", "f", false, "keep following the log file")
	cmd.Flags().StringVar(&opts.MinLevel, "level", "", "minimum level to show (debug, info, warn, error, fatal)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print decoded entries as JSON lines")
	cmd.Flags().StringVar(&opts.Path, "file", "", "agent log file (default from configuration)")
	return cmd
}
