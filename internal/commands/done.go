package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"todowork/internal/app"
	"todowork/internal/config"
	"todowork/internal/exitcode"
	"todowork/internal/tasks"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "todowork done <n>" }
func (c *DoneCmd) NeedsAuth() bool    { return true }
func (c *DoneCmd) NeedsBackend() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, a, true, args, out, errOut)
}

// UndoCmd implements the undo command.
type UndoCmd struct{}

func (c *UndoCmd) Name() string       { return "undo" }
func (c *UndoCmd) Aliases() []string  { return []string{"reopen"} }
func (c *UndoCmd) Synopsis() string   { return "Mark a task not completed" }
func (c *UndoCmd) Usage() string      { return "todowork undo <n>" }
func (c *UndoCmd) NeedsAuth() bool    { return true }
func (c *UndoCmd) NeedsBackend() bool { return true }

func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, a, false, args, out, errOut)
}

// runSetCompleted is the shared implementation for done and undo.
func runSetCompleted(ctx context.Context, cfg *config.Config, a *app.App, completed bool, args []string, out, errOut io.Writer) int {
	store, task, code := resolveTask(ctx, a, args, errOut)
	if store == nil {
		return code
	}
	if err := store.SetCompleted(ctx, task.ID, completed); err != nil {
		return fail(errOut, err)
	}
	printOK(out, cfg.Quiet)
	return exitcode.Success
}

// resolveTask parses the task reference in args and looks it up in a
// freshly fetched collection. On failure it prints the error and returns a
// nil store with the exit code.
func resolveTask(ctx context.Context, a *app.App, args []string, errOut io.Writer) (*tasks.Store, tasks.Task, int) {
	n, err := ParseTaskRef(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return nil, tasks.Task{}, exitcode.UserError
	}

	store, err := fetchTasks(ctx, a)
	if err != nil {
		return nil, tasks.Task{}, fail(errOut, err)
	}

	task, err := lookupTask(store.Tasks(), n)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, tasks.Task{}, exitcode.UserError
	}
	return store, task, exitcode.Success
}
