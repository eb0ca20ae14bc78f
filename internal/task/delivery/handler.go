package delivery

import (
	"errors"
	"net/http"
	"time"

	taskdto "taskpulse-backend/internal/task/dto"
	"taskpulse-backend/internal/task/usecase"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles task HTTP requests
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskUsecase usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{taskUsecase: taskUsecase}
}

// CreateTask creates a new task
// POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID := c.GetString("userID")

	var req taskdto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.CreateTask(userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, taskdto.NewTaskResponse(task, time.Now()))
}

// ListTasks lists the user's tasks with optional filters
// GET /api/tasks?status=&priority=&due_from=&due_to=
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID := c.GetString("userID")

	var filter usecase.ListFilter
	switch status := c.DefaultQuery("status", "all"); status {
	case "all":
	case "in_progress":
		completed := false
		filter.Completed = &completed
	case "completed":
		completed := true
		filter.Completed = &completed
	case "overdue":
		filter.Overdue = true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}
	filter.Priority = c.Query("priority")
	if v := c.Query("due_from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_from"})
			return
		}
		filter.DueFrom = &from
	}
	if v := c.Query("due_to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_to"})
			return
		}
		filter.DueTo = &to
	}

	tasks, err := h.taskUsecase.ListTasks(userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": taskdto.NewTaskResponseList(tasks, time.Now())})
}

// SearchTasks fuzzy-searches the user's tasks
// GET /api/tasks/search?q=
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	userID := c.GetString("userID")

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	tasks, err := h.taskUsecase.SearchTasks(userID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": taskdto.NewTaskResponseList(tasks, time.Now())})
}

// GetTask returns one task
// GET /api/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID := c.GetString("userID")

	task, err := h.taskUsecase.GetTask(userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskdto.NewTaskResponse(task, time.Now()))
}

// UpdateTask replaces a task's editable fields
// PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID := c.GetString("userID")

	var req taskdto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.UpdateTask(userID, c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskdto.NewTaskResponse(task, time.Now()))
}

// ToggleCompletion flips a task's completed flag
// PATCH /api/tasks/:id/toggle
func (h *TaskHandler) ToggleCompletion(c *gin.Context) {
	userID := c.GetString("userID")

	task, err := h.taskUsecase.ToggleCompletion(userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskdto.NewTaskResponse(task, time.Now()))
}

// ToggleSubtask flips one subtask's completed flag
// PATCH /api/tasks/:id/subtasks/:subtaskId/toggle
func (h *TaskHandler) ToggleSubtask(c *gin.Context) {
	userID := c.GetString("userID")

	task, err := h.taskUsecase.ToggleSubtask(userID, c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskdto.NewTaskResponse(task, time.Now()))
}

// DeleteTask moves a task to the recently-deleted list
// DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.taskUsecase.DeleteTask(userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// ListDeleted lists the recently-deleted holding list
// GET /api/tasks/deleted
func (h *TaskHandler) ListDeleted(c *gin.Context) {
	userID := c.GetString("userID")

	tasks, err := h.taskUsecase.ListDeleted(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": taskdto.NewTaskResponseList(tasks, time.Now())})
}

// RestoreTask moves a task out of the recently-deleted list
// POST /api/tasks/:id/restore
func (h *TaskHandler) RestoreTask(c *gin.Context) {
	userID := c.GetString("userID")

	task, err := h.taskUsecase.RestoreTask(userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskdto.NewTaskResponse(task, time.Now()))
}

// PurgeTask permanently removes a task from the recently-deleted list
// DELETE /api/tasks/:id/permanent
func (h *TaskHandler) PurgeTask(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.taskUsecase.PurgeTask(userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task permanently deleted"})
}

// Dashboard returns aggregate task statistics
// GET /api/dashboard
func (h *TaskHandler) Dashboard(c *gin.Context) {
	userID := c.GetString("userID")

	stats, err := h.taskUsecase.Dashboard(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *TaskHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, usecase.ErrSubtaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "subtask not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
