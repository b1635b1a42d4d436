// Package mongostore implements service.ProfileStore and service.TaskService
// on MongoDB. Profiles live in the "profiles" collection keyed by user ID;
// tasks live in the "tasks" collection, one document per task, filtered by
// userId on every query.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"todowork/internal/service"
)

const (
	profilesCollection = "profiles"
	tasksCollection    = "tasks"

	// ConnectTimeout bounds the initial connection.
	ConnectTimeout = 10 * time.Second
)

// Store is a MongoDB-backed profile and task store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

type profileDoc struct {
	UserID      string    `bson:"_id"`
	DisplayName string    `bson:"displayName"`
	SecondaryID string    `bson:"secondaryId"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

type taskDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    string             `bson:"userId"`
	Title     string             `bson:"title"`
	Completed bool               `bson:"completed"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d taskDoc) toTask() service.Task {
	return service.Task{ID: d.ID.Hex(), Title: d.Title, Completed: d.Completed}
}

// Connect dials uri and pings the server.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongo uri not set")
	}
	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongodb: %w", err)
	}
	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewWithDatabase wraps an existing database handle (for testing).
func NewWithDatabase(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Close disconnects the client if Connect created it.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(tasksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create task index: %w", err)
	}
	return nil
}

// GetProfile implements service.ProfileStore.
func (s *Store) GetProfile(ctx context.Context, userID string) (service.Profile, bool, error) {
	var doc profileDoc
	err := s.db.Collection(profilesCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return service.Profile{}, false, nil
	}
	if err != nil {
		return service.Profile{}, false, err
	}
	return service.Profile{DisplayName: doc.DisplayName, SecondaryID: doc.SecondaryID}, true, nil
}

// SetProfile implements service.ProfileStore.
func (s *Store) SetProfile(ctx context.Context, userID string, p service.Profile) error {
	_, err := s.db.Collection(profilesCollection).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"displayName": p.DisplayName,
			"secondaryId": p.SecondaryID,
			"updatedAt":   time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// ListTasks implements service.TaskService. ObjectIDs increase with
// creation time, so sorting on _id yields creation order.
func (s *Store) ListTasks(ctx context.Context, userID string) ([]service.Task, error) {
	cur, err := s.db.Collection(tasksCollection).Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]service.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toTask())
	}
	return out, nil
}

// CreateTask implements service.TaskService.
func (s *Store) CreateTask(ctx context.Context, userID, title string) (service.Task, error) {
	now := time.Now()
	doc := taskDoc{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.db.Collection(tasksCollection).InsertOne(ctx, doc); err != nil {
		return service.Task{}, err
	}
	return doc.toTask(), nil
}

// UpdateCompletion implements service.TaskService.
func (s *Store) UpdateCompletion(ctx context.Context, userID, taskID string, completed bool) error {
	objID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return service.ErrNotFound
	}
	res, err := s.db.Collection(tasksCollection).UpdateOne(ctx,
		bson.M{"_id": objID, "userId": userID},
		bson.M{"$set": bson.M{"completed": completed, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return service.ErrNotFound
	}
	return nil
}

// DeleteTask implements service.TaskService.
func (s *Store) DeleteTask(ctx context.Context, userID, taskID string) error {
	objID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return service.ErrNotFound
	}
	res, err := s.db.Collection(tasksCollection).DeleteOne(ctx, bson.M{"_id": objID, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return service.ErrNotFound
	}
	return nil
}
