// Package service defines the backend-agnostic interfaces for account,
// profile, and task operations.
package service

import "context"

// AccountService handles account lifecycle and session validity.
// Controllers never import a backend SDK directly.
type AccountService interface {
	// SignIn authenticates with email and password.
	SignIn(ctx context.Context, email, password string) (SessionHandle, error)

	// SignUp creates a new account and signs it in.
	SignUp(ctx context.Context, email, password string) (SessionHandle, error)

	// SignOut ends the current session. Signing out with no live session
	// is not an error.
	SignOut(ctx context.Context) error

	// CurrentSession reports the live session, if any.
	CurrentSession(ctx context.Context) (SessionHandle, bool, error)

	// Subscribe registers fn for session validity transitions.
	// The returned function removes the subscription.
	Subscribe(fn func(SessionEvent)) (unsubscribe func())
}

// ProfileStore persists per-account profile records.
type ProfileStore interface {
	// GetProfile returns the profile for userID.
	// ok is false if no profile record exists.
	GetProfile(ctx context.Context, userID string) (p Profile, ok bool, err error)

	// SetProfile writes the profile for userID, replacing any existing record.
	SetProfile(ctx context.Context, userID string, p Profile) error
}

// TaskService stores per-user task records.
// Every call is scoped to userID; implementations never return another
// user's tasks.
type TaskService interface {
	// ListTasks returns all tasks for the user in creation order.
	// Results are not sorted client-side.
	ListTasks(ctx context.Context, userID string) ([]Task, error)

	// CreateTask creates a task with Completed=false.
	// The returned task carries the service-assigned ID.
	CreateTask(ctx context.Context, userID, title string) (Task, error)

	// UpdateCompletion sets the completion flag of a task.
	UpdateCompletion(ctx context.Context, userID, taskID string, completed bool) error

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, userID, taskID string) error
}
