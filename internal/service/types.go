package service

// SessionHandle identifies a live authenticated session.
type SessionHandle struct {
	UserID string
	Email  string
	// Token is the backend credential for this session (opaque).
	Token string
	// RefreshToken renews Token once it expires. Empty when the backend
	// issues non-expiring tokens.
	RefreshToken string
}

// SessionEvent is delivered to AccountService subscribers.
type SessionEvent struct {
	Handle SessionHandle
	Valid  bool
}

// Profile holds the user-facing profile fields of an account.
type Profile struct {
	DisplayName string `json:"displayName" bson:"displayName"`
	SecondaryID string `json:"secondaryId" bson:"secondaryId"`
}

// Task represents a single to-do item.
type Task struct {
	ID        string
	Title     string
	Completed bool
}
