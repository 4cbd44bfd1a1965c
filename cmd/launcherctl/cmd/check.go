package cmd

import (
	"fmt"
	"text/tabwriter"

	"logstash-launcher/internal/logging"
	"logstash-launcher/internal/preflight"

	"github.com/spf13/cobra"
)

func newCheckCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the interpreter, archive and directories",
		Long: `Run preflight checks against the launcher configuration:
  - the interpreter is on PATH
  - the agent archive exists
  - the config directory exists and holds *.conf files
  - the temp and log directories exist

Exits non-zero if any check fails. Warnings do not fail the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}

			results := preflight.New(cfg, nil, logging.L()).Run()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Status, r.Name, r.Message)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return preflight.Err(results)
		},
	}
}
