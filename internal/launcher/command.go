package launcher

import (
	"os"
	"path/filepath"
	"strings"

	"logstash-launcher/internal/config"
)

// Command is a fully built invocation of the interpreter.
type Command struct {
	// Path names the program to run. Build leaves it as configured; Launch
	// replaces it with the resolved location before exec.
	Path string
	// Argv is the argument vector the new process receives, argv[0] first.
	Argv []string
	// Env is the environment the new process receives.
	Env []string
}

// Tokens joins the base command and the extra arguments the way a shell
// word-split would: everything is concatenated with spaces and split again
// on whitespace, so an extra argument containing spaces becomes several
// tokens. With preserve set, the base command is split and every extra
// argument is appended as a single token.
func Tokens(base string, extra []string, preserve bool) []string {
	if preserve {
		tokens := strings.Fields(base)
		return append(tokens, extra...)
	}
	return strings.Fields(base + " " + strings.Join(extra, " "))
}

// Build assembles the command for one launch. invokedAs is the launcher's
// own argv[0]; its base name is what the interpreter sees as argv[0], in
// place of the interpreter's name.
func Build(cfg *config.LaunchConfig, invokedAs string, extra []string) *Command {
	tokens := Tokens(cfg.BaseCommand(), extra, cfg.PreserveArgs)

	name := tokens[0]
	if invokedAs != "" {
		name = filepath.Base(invokedAs)
	}

	argv := make([]string, 0, len(tokens))
	argv = append(argv, name)
	argv = append(argv, tokens[1:]...)

	return &Command{
		Path: tokens[0],
		Argv: argv,
		Env:  os.Environ(),
	}
}

// String renders the command for logs and dry runs.
func (c *Command) String() string {
	return c.Path + " " + strings.Join(c.Argv, " ")
}
