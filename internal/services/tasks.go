package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"task-board/backend/internal/models"
	"task-board/backend/internal/store"
)

// ErrValidation marks malformed task input. Handlers map it to 400.
var ErrValidation = errors.New("validation failed")

// TaskInput is the client-supplied portion of a new task. The owner is never
// taken from the client; it always comes from the authenticated caller.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

type TaskService interface {
	CreateTask(ctx context.Context, userID string, input TaskInput) (models.Task, error)
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	UpdateTask(ctx context.Context, userID, id string, update models.TaskUpdate) (models.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

// ReminderScheduler enqueues a deadline reminder for a task. A nil scheduler
// disables reminders.
type ReminderScheduler interface {
	Schedule(ctx context.Context, taskID, userID string, due time.Time) error
}

type TaskServiceImpl struct {
	tasks     store.TaskStore
	reminders ReminderScheduler
}

func NewTaskService(tasks store.TaskStore, reminders ReminderScheduler) *TaskServiceImpl {
	return &TaskServiceImpl{tasks: tasks, reminders: reminders}
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, userID string, input TaskInput) (models.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return models.Task{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !models.ValidStatus(input.Status) {
		return models.Task{}, fmt.Errorf("%w: status must be one of todo, in-progress, under-review, completed", ErrValidation)
	}
	if input.Priority != "" && !models.ValidPriority(input.Priority) {
		return models.Task{}, fmt.Errorf("%w: priority must be one of low, medium, urgent", ErrValidation)
	}

	task, err := s.tasks.CreateTask(ctx, models.Task{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Deadline:    input.Deadline,
	})
	if err != nil {
		return models.Task{}, err
	}

	s.scheduleReminder(ctx, task)
	return task, nil
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	return s.tasks.ListTasks(ctx, userID)
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, userID, id string, update models.TaskUpdate) (models.Task, error) {
	if update.Title != nil {
		trimmed := strings.TrimSpace(*update.Title)
		if trimmed == "" {
			return models.Task{}, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		update.Title = &trimmed
	}
	if update.Status != nil && !models.ValidStatus(*update.Status) {
		return models.Task{}, fmt.Errorf("%w: status must be one of todo, in-progress, under-review, completed", ErrValidation)
	}
	if update.Priority != nil && *update.Priority != "" && !models.ValidPriority(*update.Priority) {
		return models.Task{}, fmt.Errorf("%w: priority must be one of low, medium, urgent", ErrValidation)
	}

	task, err := s.tasks.UpdateTask(ctx, userID, id, update)
	if err != nil {
		return models.Task{}, err
	}

	if update.Deadline != nil {
		s.scheduleReminder(ctx, task)
	}
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, userID, id string) error {
	return s.tasks.DeleteTask(ctx, userID, id)
}

// scheduleReminder is best effort: a full board must keep working when the
// queue is down.
func (s *TaskServiceImpl) scheduleReminder(ctx context.Context, task models.Task) {
	if s.reminders == nil || task.Deadline == nil {
		return
	}
	if err := s.reminders.Schedule(ctx, task.ID, task.UserID, *task.Deadline); err != nil {
		log.Printf("Failed to schedule reminder for task %s: %v", task.ID, err)
	}
}
