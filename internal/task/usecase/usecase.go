package usecase

import (
	"context"
	"errors"
	"time"

	"taskpulse-backend/internal/task/domain"
	taskdto "taskpulse-backend/internal/task/dto"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubtaskNotFound = errors.New("subtask not found")
)

// ListFilter narrows task listings. Overdue is evaluated against the
// current clock after the storage query runs.
type ListFilter struct {
	Completed *bool
	Priority  string
	Overdue   bool
	DueFrom   *time.Time
	DueTo     *time.Time
}

// Kicker requests a background reminder re-sync for a user. The usecase
// fires it after every task mutation and never waits on it.
type Kicker interface {
	Kick(userID string)
}

// ChangeNotifier pushes task-change events to the user's live streams.
type ChangeNotifier interface {
	Notify(userID, name string, data any)
}

// TaskUsecase defines the task business logic interface
type TaskUsecase interface {
	CreateTask(userID string, req *taskdto.CreateTaskRequest) (*domain.Task, error)
	GetTask(userID, taskID string) (*domain.Task, error)
	ListTasks(userID string, filter ListFilter) ([]*domain.Task, error)
	// SearchTasks fuzzy-matches the query against titles, descriptions
	// and subtask titles, most relevant first.
	SearchTasks(userID, query string) ([]*domain.Task, error)
	UpdateTask(userID, taskID string, req *taskdto.UpdateTaskRequest) (*domain.Task, error)

	// ToggleCompletion flips the task's completed flag, cascading to
	// subtasks on completion and awarding luck on the false→true edge.
	ToggleCompletion(userID, taskID string) (*domain.Task, error)
	// ToggleSubtask flips one subtask and re-evaluates the parent flag.
	ToggleSubtask(userID, taskID, subtaskID string) (*domain.Task, error)

	DeleteTask(userID, taskID string) error
	ListDeleted(userID string) ([]*domain.Task, error)
	RestoreTask(userID, taskID string) (*domain.Task, error)
	PurgeTask(userID, taskID string) error

	Dashboard(userID string) (*taskdto.DashboardResponse, error)

	// ReminderState feeds the reminder scheduler's background worker.
	ReminderState(ctx context.Context, userID string) ([]domain.Task, bool, error)
}
