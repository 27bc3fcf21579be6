package services

import (
	"context"
	"fmt"
	"time"

	"task-board/backend/internal/cache"
	"task-board/backend/internal/models"
)

const taskListTTL = 15 * time.Minute

// CachedTaskService decorates a TaskService with a per-user task-list cache.
// Cache failures fall through to the underlying service; the cache never
// decides correctness.
type CachedTaskService struct {
	taskService TaskService
	cache       *cache.RedisCache
}

func NewCachedTaskService(taskService TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
}

func userTasksKey(userID string) string {
	return fmt.Sprintf("user_tasks:%s", userID)
}

func (s *CachedTaskService) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	key := userTasksKey(userID)

	var cached []models.Task
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	tasks, err := s.taskService.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, tasks, taskListTTL)
	return tasks, nil
}

func (s *CachedTaskService) CreateTask(ctx context.Context, userID string, input TaskInput) (models.Task, error) {
	task, err := s.taskService.CreateTask(ctx, userID, input)
	if err != nil {
		return models.Task{}, err
	}

	s.cache.Delete(ctx, userTasksKey(userID))
	return task, nil
}

func (s *CachedTaskService) UpdateTask(ctx context.Context, userID, id string, update models.TaskUpdate) (models.Task, error) {
	task, err := s.taskService.UpdateTask(ctx, userID, id, update)
	if err != nil {
		return models.Task{}, err
	}

	s.cache.Delete(ctx, userTasksKey(userID))
	return task, nil
}

func (s *CachedTaskService) DeleteTask(ctx context.Context, userID, id string) error {
	if err := s.taskService.DeleteTask(ctx, userID, id); err != nil {
		return err
	}

	s.cache.Delete(ctx, userTasksKey(userID))
	return nil
}
