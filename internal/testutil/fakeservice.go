// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"todowork/internal/service"
)

type fakeAccount struct {
	userID   string
	password string
}

// FakeAccounts is an in-memory implementation of service.AccountService.
type FakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]fakeAccount // email -> account
	current  *service.SessionHandle
	subs     map[int]func(service.SessionEvent)
	nextSub  int
	nextUser int

	// Error injection for testing
	SignInErr         error
	SignUpErr         error
	SignOutErr        error
	CurrentSessionErr error

	// Call counters
	SignOutCalls int
}

// NewFakeAccounts creates an empty FakeAccounts.
func NewFakeAccounts() *FakeAccounts {
	return &FakeAccounts{
		accounts: make(map[string]fakeAccount),
		subs:     make(map[int]func(service.SessionEvent)),
	}
}

// AddAccount registers an account and returns its user ID.
func (f *FakeAccounts) AddAccount(email, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(email, password)
}

func (f *FakeAccounts) addLocked(email, password string) string {
	f.nextUser++
	id := fmt.Sprintf("user-%d", f.nextUser)
	f.accounts[email] = fakeAccount{userID: id, password: password}
	return id
}

// SetCurrent marks email as signed in without going through SignIn.
func (f *FakeAccounts) SetCurrent(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[email]
	if !ok {
		return
	}
	f.current = &service.SessionHandle{UserID: acc.userID, Email: email, Token: "tok-" + acc.userID}
}

// Invalidate drops the current session and notifies subscribers, as a
// backend would on token expiry or remote revocation.
func (f *FakeAccounts) Invalidate() {
	f.mu.Lock()
	h := f.current
	f.current = nil
	f.mu.Unlock()
	if h != nil {
		f.notify(service.SessionEvent{Handle: *h, Valid: false})
	}
}

// HasAccount reports whether email is registered.
func (f *FakeAccounts) HasAccount(email string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.accounts[email]
	return ok
}

// SignIn implements service.AccountService.
func (f *FakeAccounts) SignIn(ctx context.Context, email, password string) (service.SessionHandle, error) {
	if f.SignInErr != nil {
		return service.SessionHandle{}, f.SignInErr
	}
	f.mu.Lock()
	acc, ok := f.accounts[email]
	if !ok || acc.password != password {
		f.mu.Unlock()
		return service.SessionHandle{}, service.ErrInvalidCredentials
	}
	h := service.SessionHandle{UserID: acc.userID, Email: email, Token: "tok-" + acc.userID}
	f.current = &h
	f.mu.Unlock()
	f.notify(service.SessionEvent{Handle: h, Valid: true})
	return h, nil
}

// SignUp implements service.AccountService.
func (f *FakeAccounts) SignUp(ctx context.Context, email, password string) (service.SessionHandle, error) {
	if f.SignUpErr != nil {
		return service.SessionHandle{}, f.SignUpErr
	}
	f.mu.Lock()
	if _, ok := f.accounts[email]; ok {
		f.mu.Unlock()
		return service.SessionHandle{}, service.ErrAccountExists
	}
	id := f.addLocked(email, password)
	h := service.SessionHandle{UserID: id, Email: email, Token: "tok-" + id}
	f.current = &h
	f.mu.Unlock()
	f.notify(service.SessionEvent{Handle: h, Valid: true})
	return h, nil
}

// SignOut implements service.AccountService.
func (f *FakeAccounts) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.SignOutCalls++
	if f.SignOutErr != nil {
		f.mu.Unlock()
		return f.SignOutErr
	}
	h := f.current
	f.current = nil
	f.mu.Unlock()
	if h != nil {
		f.notify(service.SessionEvent{Handle: *h, Valid: false})
	}
	return nil
}

// CurrentSession implements service.AccountService.
func (f *FakeAccounts) CurrentSession(ctx context.Context) (service.SessionHandle, bool, error) {
	if f.CurrentSessionErr != nil {
		return service.SessionHandle{}, false, f.CurrentSessionErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return service.SessionHandle{}, false, nil
	}
	return *f.current, true, nil
}

// Subscribe implements service.AccountService.
func (f *FakeAccounts) Subscribe(fn func(service.SessionEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

func (f *FakeAccounts) notify(ev service.SessionEvent) {
	f.mu.Lock()
	fns := make([]func(service.SessionEvent), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// FakeProfiles is an in-memory implementation of service.ProfileStore.
type FakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]service.Profile

	// Error injection for testing
	GetProfileErr error
	SetProfileErr error

	SetProfileCalls int
}

// NewFakeProfiles creates an empty FakeProfiles.
func NewFakeProfiles() *FakeProfiles {
	return &FakeProfiles{profiles: make(map[string]service.Profile)}
}

// Put stores a profile directly.
func (f *FakeProfiles) Put(userID string, p service.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[userID] = p
}

// Len returns the number of stored profiles.
func (f *FakeProfiles) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.profiles)
}

// GetProfile implements service.ProfileStore.
func (f *FakeProfiles) GetProfile(ctx context.Context, userID string) (service.Profile, bool, error) {
	if f.GetProfileErr != nil {
		return service.Profile{}, false, f.GetProfileErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	return p, ok, nil
}

// SetProfile implements service.ProfileStore.
func (f *FakeProfiles) SetProfile(ctx context.Context, userID string, p service.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetProfileCalls++
	if f.SetProfileErr != nil {
		return f.SetProfileErr
	}
	f.profiles[userID] = p
	return nil
}

// FakeTasks is an in-memory implementation of service.TaskService.
type FakeTasks struct {
	mu     sync.RWMutex
	tasks  map[string][]service.Task // userID -> tasks
	nextID int

	// Error injection for testing
	ListTasksErr        error
	CreateTaskErr       error
	UpdateCompletionErr error
	DeleteTaskErr       error

	CreateTaskCalls int
}

// NewFakeTasks creates an empty FakeTasks.
func NewFakeTasks() *FakeTasks {
	return &FakeTasks{tasks: make(map[string][]service.Task)}
}

// AddTask seeds a task for a user.
func (f *FakeTasks) AddTask(userID, taskID, title string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[userID] = append(f.tasks[userID], service.Task{
		ID:        taskID,
		Title:     title,
		Completed: completed,
	})
}

// Snapshot returns a copy of the stored tasks for a user.
func (f *FakeTasks) Snapshot(userID string) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks[userID]))
	copy(out, f.tasks[userID])
	return out
}

// ListTasks implements service.TaskService.
func (f *FakeTasks) ListTasks(ctx context.Context, userID string) ([]service.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Snapshot(userID), nil
}

// CreateTask implements service.TaskService.
func (f *FakeTasks) CreateTask(ctx context.Context, userID, title string) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateTaskCalls++
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.nextID++
	t := service.Task{ID: fmt.Sprintf("t%d", f.nextID), Title: title}
	f.tasks[userID] = append(f.tasks[userID], t)
	return t, nil
}

// UpdateCompletion implements service.TaskService.
func (f *FakeTasks) UpdateCompletion(ctx context.Context, userID, taskID string, completed bool) error {
	if f.UpdateCompletionErr != nil {
		return f.UpdateCompletionErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks[userID] {
		if t.ID == taskID {
			f.tasks[userID][i].Completed = completed
			return nil
		}
	}
	return service.ErrNotFound
}

// DeleteTask implements service.TaskService.
func (f *FakeTasks) DeleteTask(ctx context.Context, userID, taskID string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := f.tasks[userID]
	for i, t := range tasks {
		if t.ID == taskID {
			f.tasks[userID] = append(tasks[:i:i], tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}
