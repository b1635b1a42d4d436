// Package app is the application shell. It owns the session controller and
// the task store, creates a store for each authenticated user, and discards
// it on any transition away from Authenticated.
package app

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"todowork/internal/service"
	"todowork/internal/session"
	"todowork/internal/tasks"
)

// Backend bundles the collaborators the controllers talk to.
type Backend struct {
	Accounts service.AccountService
	Profiles service.ProfileStore
	Tasks    service.TaskService

	// Closer releases backend resources (database handles, clients).
	// May be nil.
	Closer io.Closer
}

// App wires the controllers to a Backend.
type App struct {
	backend Backend
	log     *slog.Logger

	auth *session.Controller

	mu    sync.Mutex
	store *tasks.Store

	started bool
	stop    chan struct{}
	done    chan struct{}
}

// New constructs the controllers. Call Start to resolve the session and
// Close to tear everything down.
func New(backend Backend, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{
		backend: backend,
		log:     log,
		auth:    session.New(backend.Accounts, backend.Profiles, log),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins following session transitions and runs the startup session
// check. It returns the resulting Session.
func (a *App) Start(ctx context.Context) session.Session {
	ch, cancel := a.auth.Subscribe()
	a.mu.Lock()
	a.started = true
	a.mu.Unlock()
	go a.follow(ch, cancel)
	s := a.auth.CheckSession(ctx)
	a.sync(s)
	return s
}

// Auth returns the session controller.
func (a *App) Auth() *session.Controller { return a.auth }

// Session returns the current session snapshot.
func (a *App) Session() session.Session { return a.auth.Session() }

// Tasks returns the task store for the signed-in user.
// Returns service.ErrSessionMismatch unless the session is Authenticated.
func (a *App) Tasks() (*tasks.Store, error) {
	s := a.auth.Session()
	a.sync(s)

	a.mu.Lock()
	defer a.mu.Unlock()
	if s.Status != session.Authenticated || a.store == nil {
		return nil, service.ErrSessionMismatch
	}
	return a.store, nil
}

// Close stops following the session, discards the task store, and
// releases the backend.
func (a *App) Close() error {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}
	a.auth.Close()

	a.mu.Lock()
	started := a.started
	a.mu.Unlock()
	if started {
		<-a.done
	}

	a.mu.Lock()
	if a.store != nil {
		a.store.Discard()
		a.store = nil
	}
	a.mu.Unlock()

	if a.backend.Closer != nil {
		return a.backend.Closer.Close()
	}
	return nil
}

func (a *App) follow(ch <-chan session.Session, cancel func()) {
	defer close(a.done)
	defer cancel()
	for {
		select {
		case <-a.stop:
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			// A delivered snapshot may already be superseded.
			a.sync(a.auth.Session())
		}
	}
}

// sync makes the task store match s: a store for the authenticated user,
// or none at all.
func (a *App) sync(s session.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s.Status == session.Authenticated {
		if a.store != nil && a.store.UserID() == s.UserID {
			return
		}
		if a.store != nil {
			a.store.Discard()
		}
		a.store = tasks.NewStore(a.backend.Tasks, s.UserID, a.log)
		return
	}
	if s.Status != session.Loading && a.store != nil {
		a.log.Debug("discarding task store", "user", a.store.UserID())
		a.store.Discard()
		a.store = nil
	}
}
