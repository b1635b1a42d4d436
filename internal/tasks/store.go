// Package tasks implements the signed-in user's task cache.
//
// A Store mirrors every mutation to a service.TaskService and updates its
// local collection only after the remote call succeeds. The collection keeps
// the order returned by the service; new tasks are appended.
package tasks

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"todowork/internal/observe"
	"todowork/internal/service"
)

// Task is a single to-do item owned by the store's user.
type Task = service.Task

// Store caches one user's tasks.
type Store struct {
	svc    service.TaskService
	userID string
	log    *slog.Logger

	mu        sync.Mutex
	tasks     []Task
	discarded bool

	published *observe.Value[[]Task]
}

// NewStore creates an empty store scoped to userID.
func NewStore(svc service.TaskService, userID string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		svc:       svc,
		userID:    userID,
		log:       log.With("component", "tasks", "user", userID),
		published: observe.NewValue[[]Task](nil),
	}
}

// UserID returns the user the store is scoped to.
func (s *Store) UserID() string { return s.userID }

// Tasks returns a copy of the current collection.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Subscribe delivers a copy of the collection after every change.
func (s *Store) Subscribe() (<-chan []Task, func()) {
	return s.published.Subscribe()
}

// Fetch replaces the collection with the service's listing.
func (s *Store) Fetch(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	list, err := s.svc.ListTasks(ctx, s.userID)
	if err != nil {
		return service.Remote("fetch tasks", err)
	}
	s.apply(func(cur []Task) []Task {
		return slices.Clone(list)
	})
	s.log.Debug("tasks fetched", "count", len(list))
	return nil
}

// Add creates a task. Blank titles are rejected without a remote call.
func (s *Store) Add(ctx context.Context, title string) (Task, error) {
	if strings.TrimSpace(title) == "" {
		return Task{}, service.Required("title")
	}
	if err := s.check(); err != nil {
		return Task{}, err
	}
	t, err := s.svc.CreateTask(ctx, s.userID, title)
	if err != nil {
		return Task{}, service.Remote("add task", err)
	}
	s.apply(func(cur []Task) []Task {
		return append(cur, t)
	})
	s.log.Debug("task added", "id", t.ID)
	return t, nil
}

// SetCompleted updates the completion flag of task id. Only the Completed
// field of the matching local task changes; an unknown id is a no-op patch.
func (s *Store) SetCompleted(ctx context.Context, id string, completed bool) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := s.svc.UpdateCompletion(ctx, s.userID, id, completed); err != nil {
		return service.Remote("update task", err)
	}
	s.apply(func(cur []Task) []Task {
		if i := indexOf(cur, id); i >= 0 {
			cur[i].Completed = completed
		}
		return cur
	})
	return nil
}

// Delete removes task id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := s.svc.DeleteTask(ctx, s.userID, id); err != nil {
		return service.Remote("delete task", err)
	}
	s.apply(func(cur []Task) []Task {
		if i := indexOf(cur, id); i >= 0 {
			return slices.Delete(cur, i, i+1)
		}
		return cur
	})
	s.log.Debug("task deleted", "id", id)
	return nil
}

// Discard drops the collection and closes the store. Every later operation
// fails with service.ErrSessionMismatch.
func (s *Store) Discard() {
	s.mu.Lock()
	s.tasks = nil
	s.discarded = true
	s.mu.Unlock()
	s.published.Set(nil)
	s.published.Close()
}

func (s *Store) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded || s.userID == "" {
		return service.ErrSessionMismatch
	}
	return nil
}

// apply mutates the collection under the lock and publishes a copy.
// Results arriving after Discard are dropped.
func (s *Store) apply(fn func([]Task) []Task) {
	s.mu.Lock()
	if s.discarded {
		s.mu.Unlock()
		return
	}
	s.tasks = fn(s.tasks)
	snapshot := slices.Clone(s.tasks)
	s.mu.Unlock()
	s.published.Set(snapshot)
}

func indexOf(list []Task, id string) int {
	return slices.IndexFunc(list, func(t Task) bool { return t.ID == id })
}
