package domain

import (
	"time"

	"gorm.io/gorm"
)

// Priority represents task priority level
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SortOrder ranks priorities so that high > medium > low.
func (p Priority) SortOrder() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// ParsePriority maps a request string onto a Priority, defaulting to medium.
func ParsePriority(p string) Priority {
	switch p {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Subtask is a checklist entry owned by a task. It has no persistence
// identity of its own; the whole list is stored inside the task row.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is a to-do item with optional due date and subtask checklist.
//
// DueDateHasTime distinguishes "due at 15:00" from "due that day": when it
// is false the task is due by the end of the stored calendar day.
type Task struct {
	ID             string         `json:"id" gorm:"primaryKey"`
	UserID         string         `json:"user_id" gorm:"index;not null"`
	Title          string         `json:"title" gorm:"not null"`
	Description    string         `json:"description,omitempty"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	DueDateHasTime bool           `json:"due_date_has_time"`
	Priority       Priority       `json:"priority" gorm:"default:medium"`
	Subtasks       []Subtask      `json:"subtasks" gorm:"serializer:json"`
	Completed      bool           `json:"completed"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// EffectiveDueInstant is the exact point in time a due date is considered
// due: the stored instant when a time of day was set, otherwise 23:59:59
// local on the stored calendar day.
func EffectiveDueInstant(due time.Time, hasTime bool) time.Time {
	if hasTime {
		return due
	}
	y, m, d := due.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, due.Location())
}

// EffectiveDue returns the task's effective due instant, or nil when the
// task has no due date.
func (t *Task) EffectiveDue() *time.Time {
	if t.DueDate == nil {
		return nil
	}
	instant := EffectiveDueInstant(*t.DueDate, t.DueDateHasTime)
	return &instant
}

// Progress reports completion in [0,1]. A task with subtasks that are all
// done but whose own flag is still unset caps at 0.99 so the UI never shows
// 100% before the parent flag flips.
func (t *Task) Progress() float64 {
	if t.Completed {
		return 1.0
	}
	if len(t.Subtasks) == 0 {
		return 0.0
	}
	done := 0
	for _, st := range t.Subtasks {
		if st.Completed {
			done++
		}
	}
	calculated := float64(done) / float64(len(t.Subtasks))
	if calculated > 0.99 {
		return 0.99
	}
	return calculated
}

// IsOverdue reports whether the effective due instant has passed for an
// incomplete task.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Completed {
		return false
	}
	due := t.EffectiveDue()
	if due == nil {
		return false
	}
	return due.Before(now)
}

// IsNearDue reports whether an incomplete task is due within the next 24
// hours and still in the future.
func (t *Task) IsNearDue(now time.Time) bool {
	if t.Completed {
		return false
	}
	due := t.EffectiveDue()
	if due == nil {
		return false
	}
	until := due.Sub(now)
	return until > 0 && until < 24*time.Hour
}
