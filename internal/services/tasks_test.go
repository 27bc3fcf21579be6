package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-board/backend/internal/models"
	"task-board/backend/internal/services"
	"task-board/backend/internal/store"
)

type recordingScheduler struct {
	scheduled []string
}

func (r *recordingScheduler) Schedule(ctx context.Context, taskID, userID string, due time.Time) error {
	r.scheduled = append(r.scheduled, taskID)
	return nil
}

func setupTaskService() (*services.TaskServiceImpl, *recordingScheduler) {
	scheduler := &recordingScheduler{}
	return services.NewTaskService(store.NewMemoryTaskStore(), scheduler), scheduler
}

func TestTaskService_CreateValidation(t *testing.T) {
	svc, _ := setupTaskService()
	ctx := context.Background()

	tests := []struct {
		name  string
		input services.TaskInput
	}{
		{"missing title", services.TaskInput{Status: models.StatusTodo}},
		{"blank title", services.TaskInput{Title: "   ", Status: models.StatusTodo}},
		{"missing status", services.TaskInput{Title: "Write spec"}},
		{"unknown status", services.TaskInput{Title: "Write spec", Status: "pending"}},
		{"unknown priority", services.TaskInput{Title: "Write spec", Status: models.StatusTodo, Priority: "high"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTask(ctx, "owner-1", tt.input)
			assert.ErrorIs(t, err, services.ErrValidation)

			// Nothing may be persisted on a validation failure.
			listed, listErr := svc.ListTasks(ctx, "owner-1")
			require.NoError(t, listErr)
			assert.Empty(t, listed)
		})
	}
}

func TestTaskService_CreateAssignsOwner(t *testing.T) {
	svc, _ := setupTaskService()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "caller-id", services.TaskInput{
		Title:  "Write spec",
		Status: models.StatusTodo,
	})
	require.NoError(t, err)

	assert.Equal(t, "caller-id", task.UserID)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Write spec", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.False(t, task.CreatedAt.IsZero())
	assert.False(t, task.UpdatedAt.IsZero())
}

func TestTaskService_UpdateValidation(t *testing.T) {
	svc, _ := setupTaskService()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "owner-1", services.TaskInput{
		Title:  "Write spec",
		Status: models.StatusTodo,
	})
	require.NoError(t, err)

	empty := ""
	_, err = svc.UpdateTask(ctx, "owner-1", task.ID, models.TaskUpdate{Title: &empty})
	assert.ErrorIs(t, err, services.ErrValidation)

	bad := "blocked"
	_, err = svc.UpdateTask(ctx, "owner-1", task.ID, models.TaskUpdate{Status: &bad})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestTaskService_UpdateNotOwned(t *testing.T) {
	svc, _ := setupTaskService()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "owner-a", services.TaskInput{
		Title:  "private",
		Status: models.StatusTodo,
	})
	require.NoError(t, err)

	status := models.StatusCompleted
	_, err = svc.UpdateTask(ctx, "owner-b", task.ID, models.TaskUpdate{Status: &status})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTaskService_ReminderScheduling(t *testing.T) {
	svc, scheduler := setupTaskService()
	ctx := context.Background()

	// No deadline, no reminder.
	_, err := svc.CreateTask(ctx, "owner-1", services.TaskInput{
		Title:  "no deadline",
		Status: models.StatusTodo,
	})
	require.NoError(t, err)
	assert.Empty(t, scheduler.scheduled)

	deadline := time.Now().Add(24 * time.Hour)
	task, err := svc.CreateTask(ctx, "owner-1", services.TaskInput{
		Title:    "with deadline",
		Status:   models.StatusTodo,
		Deadline: &deadline,
	})
	require.NoError(t, err)
	require.Len(t, scheduler.scheduled, 1)
	assert.Equal(t, task.ID, scheduler.scheduled[0])

	// Moving the deadline re-schedules.
	moved := deadline.Add(time.Hour)
	_, err = svc.UpdateTask(ctx, "owner-1", task.ID, models.TaskUpdate{Deadline: &moved})
	require.NoError(t, err)
	assert.Len(t, scheduler.scheduled, 2)
}

func TestTaskService_NilSchedulerIsSafe(t *testing.T) {
	svc := services.NewTaskService(store.NewMemoryTaskStore(), nil)
	ctx := context.Background()

	deadline := time.Now().Add(time.Hour)
	_, err := svc.CreateTask(ctx, "owner-1", services.TaskInput{
		Title:    "with deadline",
		Status:   models.StatusTodo,
		Deadline: &deadline,
	})
	assert.NoError(t, err)
}
