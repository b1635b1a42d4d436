package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todowork/internal/app"
	"todowork/internal/config"
	"todowork/internal/exitcode"
	"todowork/internal/output"
	"todowork/internal/tasks"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todowork` (no args) and `todowork list`.
type ListCmd struct {
	search    string
	completed bool
}

// SetFilter sets the search query and completed-only flag (for testing).
func (c *ListCmd) SetFilter(search string, completed bool) {
	c.search = search
	c.completed = completed
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "todowork list [--search <q>] [--completed]" }
func (c *ListCmd) NeedsAuth() bool    { return true }
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.BoolVar(&c.completed, "completed", false, "")
	fs.BoolVar(&c.completed, "c", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	store, err := fetchTasks(ctx, a)
	if err != nil {
		return fail(errOut, err)
	}
	all := store.Tasks()

	// Numbers refer to positions in the unfiltered collection so that
	// done/undo/rm resolve the same task from any view.
	position := make(map[string]int, len(all))
	for i, t := range all {
		position[t.ID] = i + 1
	}
	shown := tasks.Filter(all, strings.TrimSpace(c.search), c.completed)

	heading := output.HeadingAll
	if c.completed {
		heading = output.HeadingCompleted
	}
	output.FormatHeader(out, heading)
	for _, t := range shown {
		output.FormatTask(out, position[t.ID], t)
	}
	if len(shown) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}

// fetchTasks returns the signed-in user's store, refreshed from the backend.
func fetchTasks(ctx context.Context, a *app.App) (*tasks.Store, error) {
	store, err := a.Tasks()
	if err != nil {
		return nil, err
	}
	if err := store.Fetch(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
