package dto

import (
	"time"

	"taskpulse-backend/internal/task/domain"
)

// SubtaskPayload carries one checklist entry in create/update requests.
// IDs are optional on input; the server assigns missing ones.
type SubtaskPayload struct {
	ID        string `json:"id"`
	Title     string `json:"title" binding:"required"`
	Completed bool   `json:"completed"`
}

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	Title          string           `json:"title" binding:"required"`
	Description    string           `json:"description"`
	DueDate        *time.Time       `json:"due_date"`
	DueDateHasTime bool             `json:"due_date_has_time"`
	Priority       string           `json:"priority"`
	Subtasks       []SubtaskPayload `json:"subtasks"`
}

// UpdateTaskRequest replaces a task's editable fields wholesale, subtask
// list included.
type UpdateTaskRequest struct {
	Title          string           `json:"title" binding:"required"`
	Description    string           `json:"description"`
	DueDate        *time.Time       `json:"due_date"`
	DueDateHasTime bool             `json:"due_date_has_time"`
	Priority       string           `json:"priority"`
	Completed      bool             `json:"completed"`
	Subtasks       []SubtaskPayload `json:"subtasks"`
}

// TaskResponse is a task enriched with the derived fields clients render
// directly: progress, overdue and near-due are computed server-side so
// every client agrees on the time math.
type TaskResponse struct {
	*domain.Task
	Progress  float64 `json:"progress"`
	IsOverdue bool    `json:"is_overdue"`
	IsNearDue bool    `json:"is_near_due"`
}

// NewTaskResponse computes the derived fields at the given instant.
func NewTaskResponse(t *domain.Task, now time.Time) *TaskResponse {
	return &TaskResponse{
		Task:      t,
		Progress:  t.Progress(),
		IsOverdue: t.IsOverdue(now),
		IsNearDue: t.IsNearDue(now),
	}
}

// NewTaskResponseList maps a slice of tasks at one shared instant.
func NewTaskResponseList(tasks []*domain.Task, now time.Time) []*TaskResponse {
	out := make([]*TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t, now))
	}
	return out
}

// DashboardResponse aggregates a user's task statistics.
type DashboardResponse struct {
	Total           int     `json:"total"`
	Completed       int     `json:"completed"`
	Pending         int     `json:"pending"`
	Overdue         int     `json:"overdue"`
	DueToday        int     `json:"due_today"`
	CompletionRate  float64 `json:"completion_rate"`
	AverageProgress float64 `json:"average_progress"`
	LuckPoints      int     `json:"luck_points"`
}
