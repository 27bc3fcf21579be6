package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"task-board/backend/internal/models"
)

// MemoryUserStore is an in-memory UserStore used by tests and local runs
// without a database. It mirrors the mongo store's behavior, including the
// unique email constraint.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users []models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{}
}

func (s *MemoryUserStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return models.User{}, ErrDuplicateEmail
		}
	}

	user.ID = primitive.NewObjectID().Hex()
	user.CreatedAt = time.Now().UTC()
	s.users = append(s.users, user)
	return user, nil
}

func (s *MemoryUserStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryUserStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

// MemoryTaskStore is the in-memory TaskStore counterpart. Tasks are kept in
// insertion order.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks []models.Task
}

func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{}
}

func (s *MemoryTaskStore) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	task.ID = primitive.NewObjectID().Hex()
	task.CreatedAt = now
	task.UpdatedAt = now
	s.tasks = append(s.tasks, task)
	return task, nil
}

func (s *MemoryTaskStore) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []models.Task{}
	for _, task := range s.tasks {
		if task.UserID == userID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (s *MemoryTaskStore) GetTask(ctx context.Context, userID, id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, task := range s.tasks {
		if task.ID == id && task.UserID == userID {
			return task, nil
		}
	}
	return models.Task{}, ErrNotFound
}

func (s *MemoryTaskStore) UpdateTask(ctx context.Context, userID, id string, update models.TaskUpdate) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, task := range s.tasks {
		if task.ID != id || task.UserID != userID {
			continue
		}

		if update.Title != nil {
			task.Title = *update.Title
		}
		if update.Description != nil {
			task.Description = *update.Description
		}
		if update.Status != nil {
			task.Status = *update.Status
		}
		if update.Priority != nil {
			task.Priority = *update.Priority
		}
		if update.Deadline != nil {
			deadline := *update.Deadline
			task.Deadline = &deadline
		}
		task.UpdatedAt = time.Now().UTC()

		s.tasks[i] = task
		return task, nil
	}
	return models.Task{}, ErrNotFound
}

func (s *MemoryTaskStore) DeleteTask(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, task := range s.tasks {
		if task.ID == id && task.UserID == userID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
