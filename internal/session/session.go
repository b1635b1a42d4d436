// Package session implements the authentication state machine.
package session

import "fmt"

// Status is the authentication status of a Session.
type Status int

const (
	// Loading is the initial status before the first session check completes.
	Loading Status = iota

	// Authenticated means a live session exists.
	Authenticated

	// Unauthenticated means no live session exists.
	Unauthenticated

	// Error means the last sign-in or sign-up failed.
	Error
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Placeholder profile values shown when the profile is unknown.
const (
	PlaceholderName        = "User"
	PlaceholderSecondaryID = "00000000000"
)

// Session is an immutable snapshot of the authentication state.
type Session struct {
	Status Status

	// Message is the human-readable failure cause. Set only for Error.
	Message string

	// UserID and Email identify the account. Set only for Authenticated.
	UserID string
	Email  string

	displayName string
	secondaryID string
}

// Profile returns the display name and secondary identifier.
// ok is false unless the session is Authenticated; the fields must not be
// rendered otherwise.
func (s Session) Profile() (displayName, secondaryID string, ok bool) {
	if s.Status != Authenticated {
		return "", "", false
	}
	return s.displayName, s.secondaryID, true
}

func loading() Session {
	return Session{Status: Loading}
}

func unauthenticated() Session {
	return Session{Status: Unauthenticated}
}

func failed(msg string) Session {
	return Session{Status: Error, Message: msg}
}

func authenticated(userID, email, displayName, secondaryID string) Session {
	if displayName == "" {
		displayName = PlaceholderName
	}
	if secondaryID == "" {
		secondaryID = PlaceholderSecondaryID
	}
	return Session{
		Status:      Authenticated,
		UserID:      userID,
		Email:       email,
		displayName: displayName,
		secondaryID: secondaryID,
	}
}
