package commands

import (
	"context"
	"flag"
	"io"

	"todowork/internal/app"
	"todowork/internal/config"
	"todowork/internal/exitcode"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "todowork rm <n>" }
func (c *RmCmd) NeedsAuth() bool    { return true }
func (c *RmCmd) NeedsBackend() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	store, task, code := resolveTask(ctx, a, args, errOut)
	if store == nil {
		return code
	}
	if err := store.Delete(ctx, task.ID); err != nil {
		return fail(errOut, err)
	}
	printOK(out, cfg.Quiet)
	return exitcode.Success
}
