// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"todowork/internal/app"
	"todowork/internal/config"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires an Authenticated
	// session. Implies NeedsBackend.
	NeedsAuth() bool

	// NeedsBackend returns true if the command talks to the account,
	// profile, or task services.
	NeedsBackend() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// a is a started App, or nil when neither NeedsAuth nor NeedsBackend.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int
}
