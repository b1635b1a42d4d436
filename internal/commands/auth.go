package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todowork/internal/app"
	"todowork/internal/config"
	"todowork/internal/exitcode"
	"todowork/internal/output"
	"todowork/internal/session"
)

func init() {
	Register(&SignupCmd{})
	Register(&LoginCmd{})
	Register(&LogoutCmd{})
	Register(&WhoamiCmd{})
	Register(&StatusCmd{})
}

// SignupCmd implements the signup command.
type SignupCmd struct {
	name        string
	secondaryID string
	password    string
}

// SetProfile sets the display name and secondary id (for testing).
func (c *SignupCmd) SetProfile(name, secondaryID string) {
	c.name = name
	c.secondaryID = secondaryID
}

// SetPassword sets the password (for testing).
func (c *SignupCmd) SetPassword(password string) { c.password = password }

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return []string{"register"} }
func (c *SignupCmd) Synopsis() string  { return "Create an account" }
func (c *SignupCmd) Usage() string {
	return "todowork signup --name <name> --id <secondary-id> [--password <p>] <email>"
}
func (c *SignupCmd) NeedsAuth() bool    { return false }
func (c *SignupCmd) NeedsBackend() bool { return true }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.secondaryID, "id", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *SignupCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	email, code := emailArg(args, errOut)
	if code != exitcode.Success {
		return code
	}
	password, code := passwordOrPrompt(c.password, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := a.Auth().SignUp(ctx, email, password, c.name, c.secondaryID); err != nil {
		return fail(errOut, err)
	}
	printOK(out, cfg.Quiet)
	return exitcode.Success
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
}

// SetPassword sets the password (for testing).
func (c *LoginCmd) SetPassword(password string) { c.password = password }

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return []string{"signin"} }
func (c *LoginCmd) Synopsis() string   { return "Sign in with email and password" }
func (c *LoginCmd) Usage() string      { return "todowork login [--password <p>] <email>" }
func (c *LoginCmd) NeedsAuth() bool    { return false }
func (c *LoginCmd) NeedsBackend() bool { return true }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	email, code := emailArg(args, errOut)
	if code != exitcode.Success {
		return code
	}
	password, code := passwordOrPrompt(c.password, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := a.Auth().SignIn(ctx, email, password); err != nil {
		return fail(errOut, err)
	}
	printOK(out, cfg.Quiet)
	return exitcode.Success
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string       { return "logout" }
func (c *LogoutCmd) Aliases() []string  { return []string{"signout"} }
func (c *LogoutCmd) Synopsis() string   { return "Sign out" }
func (c *LogoutCmd) Usage() string      { return "todowork logout" }
func (c *LogoutCmd) NeedsAuth() bool    { return false }
func (c *LogoutCmd) NeedsBackend() bool { return true }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	// The local session is cleared even when the backend call fails.
	if err := a.Auth().SignOut(ctx); err != nil {
		return fail(errOut, err)
	}
	printOK(out, cfg.Quiet)
	return exitcode.Success
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string       { return "whoami" }
func (c *WhoamiCmd) Aliases() []string  { return []string{"profile"} }
func (c *WhoamiCmd) Synopsis() string   { return "Show the signed-in profile" }
func (c *WhoamiCmd) Usage() string      { return "todowork whoami" }
func (c *WhoamiCmd) NeedsAuth() bool    { return true }
func (c *WhoamiCmd) NeedsBackend() bool { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	s := a.Session()
	name, secondaryID, ok := s.Profile()
	if !ok {
		fmt.Fprintf(errOut, "error: %s\n", notLoggedIn)
		return exitcode.AuthError
	}
	output.FormatProfile(out, name, secondaryID, s.Email)
	return exitcode.Success
}

// StatusCmd implements the status command. It waits for the session check
// to settle, honoring splash_min, and prints the screen the app would open:
// "home" when signed in, "login" otherwise.
type StatusCmd struct{}

func (c *StatusCmd) Name() string       { return "status" }
func (c *StatusCmd) Aliases() []string  { return nil }
func (c *StatusCmd) Synopsis() string   { return "Show where startup routes to" }
func (c *StatusCmd) Usage() string      { return "todowork status" }
func (c *StatusCmd) NeedsAuth() bool    { return false }
func (c *StatusCmd) NeedsBackend() bool { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	s, err := a.Auth().AwaitSettled(ctx, cfg.Settings.SplashMin)
	if err != nil {
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.UserError
	}

	switch s.Status {
	case session.Authenticated:
		fmt.Fprintln(out, "home")
	case session.Error:
		fmt.Fprintln(out, "login")
		if !cfg.Quiet {
			fmt.Fprintf(errOut, "last error: %s\n", s.Message)
		}
	default:
		fmt.Fprintln(out, "login")
	}
	return exitcode.Success
}

func emailArg(args []string, errOut io.Writer) (string, int) {
	switch len(args) {
	case 0:
		fmt.Fprintln(errOut, "error: email required")
		return "", exitcode.UserError
	case 1:
		return args[0], exitcode.Success
	default:
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return "", exitcode.UserError
	}
}

func passwordOrPrompt(password string, errOut io.Writer) (string, int) {
	if password != "" {
		return password, exitcode.Success
	}
	p, err := readPassword(errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return "", exitcode.UserError
	}
	return p, exitcode.Success
}
