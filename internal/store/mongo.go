package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"task-board/backend/internal/models"
)

// Mongo wraps an explicitly constructed client handle. It is built once at
// startup, injected into the stores, and disconnected on shutdown; there is
// no lazy init-on-first-use connection.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	m := &Mongo{
		client: client,
		db:     client.Database(database),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}

	_, err = m.db.Collection("tasks").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create task owner index: %w", err)
	}

	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Users() *MongoUserStore {
	return &MongoUserStore{collection: m.db.Collection("users")}
}

func (m *Mongo) Tasks() *MongoTaskStore {
	return &MongoTaskStore{collection: m.db.Collection("tasks")}
}

type MongoUserStore struct {
	collection *mongo.Collection
}

func (s *MongoUserStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.ID = primitive.NewObjectID().Hex()
	user.CreatedAt = time.Now().UTC()

	if _, err := s.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

func (s *MongoUserStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

func (s *MongoUserStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to find user by id: %w", err)
	}
	return user, nil
}

type MongoTaskStore struct {
	collection *mongo.Collection
}

func (s *MongoTaskStore) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	now := time.Now().UTC()
	task.ID = primitive.NewObjectID().Hex()
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := s.collection.InsertOne(ctx, task); err != nil {
		return models.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}

	return task, nil
}

// ListTasks returns the owner's tasks in insertion order. Hex ObjectIDs sort
// lexically in creation order, so sorting on _id preserves it.
func (s *MongoTaskStore) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	return tasks, nil
}

func (s *MongoTaskStore) GetTask(ctx context.Context, userID, id string) (models.Task, error) {
	var task models.Task
	err := s.collection.FindOne(ctx, ownerFilter(userID, id)).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *MongoTaskStore) UpdateTask(ctx context.Context, userID, id string, update models.TaskUpdate) (models.Task, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Priority != nil {
		set["priority"] = *update.Priority
	}
	if update.Deadline != nil {
		set["deadline"] = *update.Deadline
	}

	var task models.Task
	err := s.collection.FindOneAndUpdate(ctx, ownerFilter(userID, id), bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

func (s *MongoTaskStore) DeleteTask(ctx context.Context, userID, id string) error {
	result, err := s.collection.DeleteOne(ctx, ownerFilter(userID, id))
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ownerFilter scopes a lookup to the authenticated owner. A task owned by
// someone else matches nothing, so it is indistinguishable from a missing
// one.
func ownerFilter(userID, id string) bson.M {
	return bson.M{"_id": id, "user_id": userID}
}
