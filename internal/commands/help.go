package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todowork/internal/app"
	"todowork/internal/config"
	"todowork/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todowork help" }
func (c *HelpCmd) NeedsAuth() bool    { return false }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todowork                                        List tasks
  todowork list [common flags] [--search <q>] [--completed]
  todowork add [common flags] <title...>
  todowork done [common flags] <n>
  todowork undo [common flags] <n>
  todowork rm [common flags] <n>
  todowork signup [common flags] --name <name> --id <secondary-id> [--password <p>] <email>
  todowork login [common flags] [--password <p>] <email>
  todowork logout [common flags]
  todowork whoami [common flags]
  todowork status [common flags]
  todowork connect [common flags]
  todowork help
  todowork version

<n> is the task number shown by list.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
