package cmd

import (
	"encoding/json"
	"fmt"

	"logstash-launcher/internal/launcher"

	"github.com/spf13/cobra"
)

type argvOptions struct {
	invokedAs string
	asJSON    bool
}

type argvOutput struct {
	Program string   `json:"program"`
	Argv    []string `json:"argv"`
}

func newArgvCmd(global *globalOptions) *cobra.Command {
	opts := &argvOptions{}

	cmd := &cobra.Command{
		Use:   "argv [-- agent arguments...]",
		Short: "Print the command the launcher would execute",
		Long: `Print the program and argument vector the launcher would hand to exec
for the given agent arguments. Nothing is executed and the interpreter is not
looked up.

Examples:
  logstash-launcherctl argv
  logstash-launcherctl argv -- -v --filterworkers 2
  logstash-launcherctl argv --json -- -e "input { stdin {} }"`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}

			c := launcher.New(cfg).Command(opts.invokedAs, args)
			out := cmd.OutOrStdout()

			if opts.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(argvOutput{Program: c.Path, Argv: c.Argv})
			}

			fmt.Fprintf(out, "program: %s\n", c.Path)
			for i, arg := range c.Argv {
				fmt.Fprintf(out, "argv[%d]: %s\n", i, arg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.invokedAs, "as", "logstash", "launcher invocation name (its argv[0])")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print as JSON")
	return cmd
}
