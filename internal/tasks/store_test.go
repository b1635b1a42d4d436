package tasks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todowork/internal/service"
	"todowork/internal/tasks"
	"todowork/internal/testutil"
)

const user = "user-1"

func seeded(t *testing.T) (*tasks.Store, *testutil.FakeTasks) {
	t.Helper()
	svc := testutil.NewFakeTasks()
	svc.AddTask(user, "1", "Buy milk", false)
	svc.AddTask(user, "2", "Write report", true)
	s := tasks.NewStore(svc, user, nil)
	require.NoError(t, s.Fetch(context.Background()))
	return s, svc
}

func TestFetch_PreservesServiceOrder(t *testing.T) {
	s, _ := seeded(t)

	got := s.Tasks()
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
}

func TestFetch_FailureLeavesCollection(t *testing.T) {
	s, svc := seeded(t)
	svc.ListTasksErr = errors.New("unavailable")

	err := s.Fetch(context.Background())
	require.ErrorIs(t, err, service.ErrRemote)
	assert.Len(t, s.Tasks(), 2)
}

func TestFetch_ScopedToUser(t *testing.T) {
	svc := testutil.NewFakeTasks()
	svc.AddTask("someone-else", "x", "Not mine", false)
	s := tasks.NewStore(svc, user, nil)

	require.NoError(t, s.Fetch(context.Background()))
	assert.Empty(t, s.Tasks())
}

func TestAdd_AppendsServerTask(t *testing.T) {
	s, _ := seeded(t)

	task, err := s.Add(context.Background(), "Call mom")
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.False(t, task.Completed)

	got := s.Tasks()
	require.Len(t, got, 3)
	assert.Equal(t, task, got[2])
}

func TestAdd_BlankTitleNeverPersisted(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		s, svc := seeded(t)

		_, err := s.Add(context.Background(), title)
		require.ErrorIs(t, err, service.ErrValidation)
		assert.Equal(t, 0, svc.CreateTaskCalls)
		assert.Len(t, svc.Snapshot(user), 2)
		assert.Len(t, s.Tasks(), 2)
	}
}

func TestAdd_FailureLeavesCollection(t *testing.T) {
	s, svc := seeded(t)
	svc.CreateTaskErr = errors.New("permission denied")

	_, err := s.Add(context.Background(), "Call mom")
	require.ErrorIs(t, err, service.ErrRemote)
	assert.Len(t, s.Tasks(), 2)
}

func TestSetCompleted_PatchesOnlyCompleted(t *testing.T) {
	s, _ := seeded(t)

	require.NoError(t, s.SetCompleted(context.Background(), "2", false))

	got := s.Tasks()
	assert.Equal(t, tasks.Task{ID: "2", Title: "Write report", Completed: false}, got[1])
	assert.Equal(t, tasks.Task{ID: "1", Title: "Buy milk", Completed: false}, got[0])
}

func TestSetCompleted_FailureLeavesCollection(t *testing.T) {
	s, svc := seeded(t)
	svc.UpdateCompletionErr = errors.New("conflict")

	err := s.SetCompleted(context.Background(), "1", true)
	require.ErrorIs(t, err, service.ErrRemote)
	assert.False(t, s.Tasks()[0].Completed)
}

func TestSetCompleted_UnknownLocalIDIsNoOp(t *testing.T) {
	svc := testutil.NewFakeTasks()
	s := tasks.NewStore(svc, user, nil)
	require.NoError(t, s.Fetch(context.Background()))
	// Appears remotely after the fetch.
	svc.AddTask(user, "late", "Late task", false)

	require.NoError(t, s.SetCompleted(context.Background(), "late", true))
	assert.Empty(t, s.Tasks())
}

func TestDelete_RemovesTask(t *testing.T) {
	s, _ := seeded(t)

	require.NoError(t, s.Delete(context.Background(), "1"))

	got := s.Tasks()
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestDelete_FailureLeavesCollection(t *testing.T) {
	s, svc := seeded(t)
	svc.DeleteTaskErr = errors.New("not found")

	require.Error(t, s.Delete(context.Background(), "1"))
	assert.Len(t, s.Tasks(), 2)
}

func TestReadAfterWriteConsistency(t *testing.T) {
	s, svc := seeded(t)
	ctx := context.Background()

	a, err := s.Add(ctx, "Call mom")
	require.NoError(t, err)
	_, err = s.Add(ctx, "Pay rent")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "1"))
	require.NoError(t, s.SetCompleted(ctx, a.ID, true))
	require.NoError(t, s.SetCompleted(ctx, "2", false))

	local := s.Tasks()

	fresh := tasks.NewStore(svc, user, nil)
	require.NoError(t, fresh.Fetch(ctx))
	assert.Equal(t, fresh.Tasks(), local)

	require.NoError(t, s.Fetch(ctx))
	assert.Equal(t, local, s.Tasks())
}

func TestDeleteThenFetchMatchesServer(t *testing.T) {
	s, svc := seeded(t)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "1"))
	require.NoError(t, s.Fetch(ctx))

	for _, task := range s.Tasks() {
		assert.NotEqual(t, "1", task.ID)
	}
	assert.Equal(t, svc.Snapshot(user), s.Tasks())
}

func TestDiscard(t *testing.T) {
	s, svc := seeded(t)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Discard()
	assert.Empty(t, s.Tasks())

	ctx := context.Background()
	require.ErrorIs(t, s.Fetch(ctx), service.ErrSessionMismatch)
	_, err := s.Add(ctx, "x")
	require.ErrorIs(t, err, service.ErrSessionMismatch)
	require.ErrorIs(t, s.SetCompleted(ctx, "1", true), service.ErrSessionMismatch)
	require.ErrorIs(t, s.Delete(ctx, "1"), service.ErrSessionMismatch)
	assert.Equal(t, 0, svc.CreateTaskCalls)

	// Last snapshot is the empty collection, then the channel closes.
	snap := <-ch
	assert.Empty(t, snap)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestNoUserIsSessionMismatch(t *testing.T) {
	s := tasks.NewStore(testutil.NewFakeTasks(), "", nil)
	require.ErrorIs(t, s.Fetch(context.Background()), service.ErrSessionMismatch)
}

func TestSubscribe_PublishesCopies(t *testing.T) {
	svc := testutil.NewFakeTasks()
	s := tasks.NewStore(svc, user, nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	_, err := s.Add(context.Background(), "One")
	require.NoError(t, err)

	snap := <-ch
	require.Len(t, snap, 1)
	snap[0].Title = "mutated"
	assert.Equal(t, "One", s.Tasks()[0].Title)
}
