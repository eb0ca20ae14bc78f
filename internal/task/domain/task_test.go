package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveDueInstant(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	due := time.Date(2026, 3, 14, 15, 0, 0, 0, loc)

	assert.Equal(t, due, EffectiveDueInstant(due, true), "time-bearing due dates are used verbatim")

	endOfDay := time.Date(2026, 3, 14, 23, 59, 59, 0, loc)
	assert.Equal(t, endOfDay, EffectiveDueInstant(due, false), "date-only due dates mean end of that day")
}

func TestEffectiveDue_NilWithoutDueDate(t *testing.T) {
	task := &Task{ID: "t1", Title: "no due"}
	assert.Nil(t, task.EffectiveDue())
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	overdue := &Task{Title: "late", DueDate: &past, DueDateHasTime: true}
	assert.True(t, overdue.IsOverdue(now))

	pending := &Task{Title: "soon", DueDate: &future, DueDateHasTime: true}
	assert.False(t, pending.IsOverdue(now))

	done := &Task{Title: "done", DueDate: &past, DueDateHasTime: true, Completed: true}
	assert.False(t, done.IsOverdue(now), "completed tasks are never overdue")

	// Date-only: due today means not overdue until the day ends.
	today := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	dateOnly := &Task{Title: "today", DueDate: &today}
	assert.False(t, dateOnly.IsOverdue(now))

	yesterday := today.AddDate(0, 0, -1)
	dateOnlyLate := &Task{Title: "yesterday", DueDate: &yesterday}
	assert.True(t, dateOnlyLate.IsOverdue(now))
}

func TestIsNearDue(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	in6h := now.Add(6 * time.Hour)
	in3d := now.Add(72 * time.Hour)
	past := now.Add(-time.Hour)

	assert.True(t, (&Task{Title: "a", DueDate: &in6h, DueDateHasTime: true}).IsNearDue(now))
	assert.False(t, (&Task{Title: "b", DueDate: &in3d, DueDateHasTime: true}).IsNearDue(now))
	assert.False(t, (&Task{Title: "c", DueDate: &past, DueDateHasTime: true}).IsNearDue(now), "past-due is overdue, not near-due")
	assert.False(t, (&Task{Title: "d", DueDate: &in6h, DueDateHasTime: true, Completed: true}).IsNearDue(now))
	assert.False(t, (&Task{Title: "e"}).IsNearDue(now))
}

func TestParsePriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, ParsePriority("high"))
	assert.Equal(t, PriorityLow, ParsePriority("low"))
	assert.Equal(t, PriorityMedium, ParsePriority("medium"))
	assert.Equal(t, PriorityMedium, ParsePriority(""), "unknown input defaults to medium")
}

func TestPrioritySortOrder(t *testing.T) {
	assert.Greater(t, PriorityHigh.SortOrder(), PriorityMedium.SortOrder())
	assert.Greater(t, PriorityMedium.SortOrder(), PriorityLow.SortOrder())
}
