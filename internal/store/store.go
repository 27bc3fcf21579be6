package store

import (
	"context"
	"errors"

	"task-board/backend/internal/models"
)

var (
	// ErrNotFound covers both a missing record and a record owned by another
	// user. Callers must not be able to tell the two apart.
	ErrNotFound = errors.New("record not found")

	ErrDuplicateEmail = errors.New("email already exists")
)

// UserStore is the credential store over the users collection.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// TaskStore persists board tasks. Every read and write is scoped to the
// owning user; ListTasks returns tasks in insertion order.
type TaskStore interface {
	CreateTask(ctx context.Context, task models.Task) (models.Task, error)
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	GetTask(ctx context.Context, userID, id string) (models.Task, error)
	UpdateTask(ctx context.Context, userID, id string, update models.TaskUpdate) (models.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}
