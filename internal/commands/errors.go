package commands

import (
	"errors"
	"fmt"
	"io"

	"todowork/internal/exitcode"
	"todowork/internal/service"
)

const notLoggedIn = "not logged in (run: todowork login)"

// fail prints err as an "error:" line and returns its exit code.
func fail(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		fmt.Fprintf(errOut, "error: %s\n", service.Message(err))
		return exitcode.UserError
	case errors.Is(err, service.ErrSessionMismatch):
		fmt.Fprintf(errOut, "error: %s\n", notLoggedIn)
		return exitcode.AuthError
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountExists):
		fmt.Fprintf(errOut, "error: %s\n", service.Message(err))
		return exitcode.AuthError
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintln(errOut, "error: task not found")
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %s\n", service.Message(err))
		return exitcode.BackendError
	}
}

func printOK(out io.Writer, quiet bool) {
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
}
