// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"todo/internal/task"
)

// Exit codes returned by todo commands.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, duplicate title, unknown task).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a storage or network error.
	BackendError = 3
)

// For maps a service error to an exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, task.ErrDuplicateTitle),
		errors.Is(err, task.ErrNotFound),
		errors.Is(err, task.ErrEmptyTitle):
		return UserError
	default:
		return BackendError
	}
}
