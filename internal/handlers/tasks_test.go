package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"task-board/backend/internal/handlers"
	"task-board/backend/internal/middleware"
	"task-board/backend/internal/models"
	"task-board/backend/internal/services"
	"task-board/backend/internal/store"
)

const testUserID = "64f0c5a2e4b0a1b2c3d4e5f7"

func setupTaskHandler() (*handlers.TaskHandler, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	taskService := services.NewTaskService(store.NewMemoryTaskStore(), nil)
	handler := handlers.NewTaskHandler(taskService)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, testUserID)
		c.Next()
	})
	router.GET("/tasks", handler.ListTasks)
	router.POST("/tasks", handler.CreateTask)
	router.PUT("/tasks/:id", handler.UpdateTask)
	router.DELETE("/tasks/:id", handler.DeleteTask)

	return handler, router
}

func createTestTask(t *testing.T, router *gin.Engine, body string) models.Task {
	t.Helper()

	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d creating task, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var task models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
		t.Fatalf("Failed to unmarshal created task: %v", err)
	}
	return task
}

func TestCreateTask(t *testing.T) {
	_, router := setupTaskHandler()

	task := createTestTask(t, router, `{"title": "Write spec", "status": "todo"}`)

	if task.Title != "Write spec" {
		t.Errorf("Expected title 'Write spec', got %q", task.Title)
	}
	if task.Status != "todo" {
		t.Errorf("Expected status 'todo', got %q", task.Status)
	}
	if task.UserID != testUserID {
		t.Errorf("Expected owner %q, got %q", testUserID, task.UserID)
	}
	if task.ID == "" {
		t.Error("Expected a generated task ID")
	}
}

func TestCreateTask_InvalidJSON(t *testing.T) {
	_, router := setupTaskHandler()

	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBufferString("invalid json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	_, router := setupTaskHandler()

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"status": "todo"}`},
		{"missing status", `{"title": "Write spec"}`},
		{"bad status", `{"title": "Write spec", "status": "pending"}`},
		{"bad priority", `{"title": "Write spec", "status": "todo", "priority": "high"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("POST", "/tasks", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
			}
		})
	}

	// None of the rejected requests may have persisted anything.
	req, _ := http.NewRequest("GET", "/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var tasks []models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("Failed to unmarshal task list: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Expected no persisted tasks, got %d", len(tasks))
	}
}

func TestCreateTask_IgnoresClientOwner(t *testing.T) {
	_, router := setupTaskHandler()

	task := createTestTask(t, router, `{"title": "Write spec", "status": "todo", "user_id": "attacker-id"}`)

	if task.UserID != testUserID {
		t.Errorf("Expected owner %q, got %q", testUserID, task.UserID)
	}
}

func TestListTasks(t *testing.T) {
	_, router := setupTaskHandler()

	createTestTask(t, router, `{"title": "first", "status": "todo"}`)
	createTestTask(t, router, `{"title": "second", "status": "in-progress"}`)

	req, _ := http.NewRequest("GET", "/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var tasks []models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("Failed to unmarshal task list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Title != "first" || tasks[1].Title != "second" {
		t.Errorf("Expected insertion order, got %q then %q", tasks[0].Title, tasks[1].Title)
	}
}

func TestUpdateTask(t *testing.T) {
	_, router := setupTaskHandler()

	task := createTestTask(t, router, `{"title": "Write spec", "status": "todo", "description": "the plan"}`)

	req, _ := http.NewRequest("PUT", "/tasks/"+task.ID, bytes.NewBufferString(`{"status": "completed"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var updated models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("Failed to unmarshal updated task: %v", err)
	}

	if updated.Status != "completed" {
		t.Errorf("Expected status 'completed', got %q", updated.Status)
	}
	if updated.Title != "Write spec" {
		t.Errorf("Expected title unchanged, got %q", updated.Title)
	}
	if updated.Description != "the plan" {
		t.Errorf("Expected description unchanged, got %q", updated.Description)
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	_, router := setupTaskHandler()

	req, _ := http.NewRequest("PUT", "/tasks/64f0c5a2e4b0a1b2c3d4e5f6", bytes.NewBufferString(`{"status": "completed"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestDeleteTask(t *testing.T) {
	_, router := setupTaskHandler()

	task := createTestTask(t, router, `{"title": "doomed", "status": "todo"}`)

	req, _ := http.NewRequest("DELETE", "/tasks/"+task.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	// Second delete of the same task is a 404.
	req, _ = http.NewRequest("DELETE", "/tasks/"+task.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d on second delete, got %d", http.StatusNotFound, w.Code)
	}
}

func TestTaskHandlers_MissingIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	taskService := services.NewTaskService(store.NewMemoryTaskStore(), nil)
	handler := handlers.NewTaskHandler(taskService)

	// No middleware sets user_id here.
	router := gin.New()
	router.GET("/tasks", handler.ListTasks)

	req, _ := http.NewRequest("GET", "/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// Ownership scoping across two callers: user B probing user A's task gets
// the same 404 a missing task would produce.
func TestTaskHandlers_CrossUserNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	taskStore := store.NewMemoryTaskStore()
	created, err := taskStore.CreateTask(context.Background(), models.Task{
		UserID: "user-a",
		Title:  "private",
		Status: models.StatusTodo,
	})
	if err != nil {
		t.Fatalf("Failed to seed task: %v", err)
	}

	handler := handlers.NewTaskHandler(services.NewTaskService(taskStore, nil))
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "user-b")
		c.Next()
	})
	router.PUT("/tasks/:id", handler.UpdateTask)
	router.DELETE("/tasks/:id", handler.DeleteTask)

	req, _ := http.NewRequest("PUT", "/tasks/"+created.ID, bytes.NewBufferString(`{"status": "completed"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if body := w.Body.String(); bytes.Contains([]byte(body), []byte("private")) {
		t.Errorf("Response must not leak the task's data: %s", body)
	}

	req, _ = http.NewRequest("DELETE", "/tasks/"+created.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}
