// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, blank input, unknown task).
	UserError = 1

	// AuthError indicates a missing or rejected session or credential.
	AuthError = 2

	// BackendError indicates a backend, database, or network failure.
	BackendError = 3
)
