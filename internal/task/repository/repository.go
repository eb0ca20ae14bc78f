package repository

import (
	"time"

	"taskpulse-backend/internal/task/domain"
)

// Filter narrows task listings. Nil fields are ignored. Overdue is a
// time-math predicate and is applied by the usecase, not here.
type Filter struct {
	Completed *bool
	Priority  *domain.Priority
	DueFrom   *time.Time
	DueTo     *time.Time
}

// TaskRepository defines the interface for task storage. Tasks are the
// source of truth; storage errors here surface to the caller.
type TaskRepository interface {
	Create(task *domain.Task) error
	FindByID(id string) (*domain.Task, error)
	FindByUserID(userID string, filter Filter) ([]*domain.Task, error)
	Update(task *domain.Task) error

	// Delete moves a task to the recently-deleted holding list.
	Delete(id string) error
	// FindDeletedByUserID lists the holding list, newest deletion first.
	FindDeletedByUserID(userID string) ([]*domain.Task, error)
	FindDeletedByID(id string) (*domain.Task, error)
	// Restore moves a task out of the holding list.
	Restore(id string) error
	// Purge permanently removes a task from the holding list.
	Purge(id string) error
}
