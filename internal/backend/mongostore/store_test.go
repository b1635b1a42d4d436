package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"todowork/internal/service"
)

func TestTaskDoc_ToTask(t *testing.T) {
	id := primitive.NewObjectID()
	doc := taskDoc{ID: id, UserID: "u1", Title: "Buy milk", Completed: true}

	got := doc.toTask()
	want := service.Task{ID: id.Hex(), Title: "Buy milk", Completed: true}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestTaskDoc_BSONFieldNames(t *testing.T) {
	doc := taskDoc{ID: primitive.NewObjectID(), UserID: "u1", Title: "x", CreatedAt: time.Now()}
	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"_id", "userId", "title", "completed", "createdAt"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing field %q in %v", key, m)
		}
	}
}

func TestInvalidTaskIDIsNotFound(t *testing.T) {
	s := NewWithDatabase(nil)
	ctx := context.Background()

	if err := s.UpdateCompletion(ctx, "u1", "not-an-object-id", true); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteTask(ctx, "u1", "not-an-object-id"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestStore_Integration runs against a real server when
// TODOWORK_TEST_MONGO_URI is set.
func TestStore_Integration(t *testing.T) {
	uri := os.Getenv("TODOWORK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TODOWORK_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	dbName := "todowork_test_" + primitive.NewObjectID().Hex()
	s, err := Connect(ctx, uri, dbName)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer func() {
		_ = s.db.Drop(ctx)
		_ = s.Close()
	}()

	if err := s.SetProfile(ctx, "u1", service.Profile{DisplayName: "Fay", SecondaryID: "1"}); err != nil {
		t.Fatalf("set profile failed: %v", err)
	}
	p, ok, err := s.GetProfile(ctx, "u1")
	if err != nil || !ok || p.DisplayName != "Fay" {
		t.Fatalf("unexpected profile %+v ok=%v err=%v", p, ok, err)
	}

	a, err := s.CreateTask(ctx, "u1", "Buy milk")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	b, err := s.CreateTask(ctx, "u1", "Write report")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.UpdateCompletion(ctx, "u1", b.ID, true); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := s.DeleteTask(ctx, "u2", a.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected other user's delete to miss, got %v", err)
	}

	list, err := s.ListTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != a.ID || !list[1].Completed {
		t.Errorf("unexpected list %+v", list)
	}
}
