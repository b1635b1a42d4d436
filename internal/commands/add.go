package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"todowork/internal/app"
	"todowork/internal/config"
	"todowork/internal/exitcode"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "todowork add <title...>" }
func (c *AddCmd) NeedsAuth() bool    { return true }
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	store, err := a.Tasks()
	if err != nil {
		return fail(errOut, err)
	}

	// Blank titles are rejected by the store before any backend call.
	if _, err := store.Add(ctx, strings.Join(args, " ")); err != nil {
		return fail(errOut, err)
	}

	printOK(out, cfg.Quiet)
	return exitcode.Success
}
