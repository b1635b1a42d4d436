package testutil

import (
	"todowork/internal/app"
)

// FakeBackend bundles the in-memory services.
type FakeBackend struct {
	Accounts *FakeAccounts
	Profiles *FakeProfiles
	Tasks    *FakeTasks
}

// NewFakeBackend creates empty fakes.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Accounts: NewFakeAccounts(),
		Profiles: NewFakeProfiles(),
		Tasks:    NewFakeTasks(),
	}
}

// Backend returns the fakes as an app.Backend.
func (f *FakeBackend) Backend() app.Backend {
	return app.Backend{Accounts: f.Accounts, Profiles: f.Profiles, Tasks: f.Tasks}
}

// SignedIn registers email, marks it as the current session, and returns
// the user ID.
func (f *FakeBackend) SignedIn(email string) string {
	id := f.Accounts.AddAccount(email, "secret")
	f.Accounts.SetCurrent(email)
	return id
}
