package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-board/backend/internal/middleware"
	"task-board/backend/internal/models"
	"task-board/backend/internal/services"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	// The input deliberately has no owner field; whatever the client sends,
	// the task belongs to the authenticated caller.
	var input services.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": "Invalid request body",
		})
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	var update models.TaskUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": "Invalid request body",
		})
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), userID, c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted successfully"})
}

func respondUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": "User not authenticated",
	})
}
