package reminder

import (
	"fmt"
	"time"

	"taskpulse-backend/internal/task/domain"
)

// IdentifierPrefix is the namespace this engine owns on the notification
// service. Identifiers are IdentifierPrefix + userID + "." + taskID, so a
// user's whole set can be cleared by prefix.
const IdentifierPrefix = "taskpulse.reminder."

const (
	// maxPendingReminders caps how many reminders one user may have
	// installed at a time; the earliest fire times win.
	maxPendingReminders = 60

	// scheduleSafetyMargin keeps fire times out of the immediate past.
	scheduleSafetyMargin = 5 * time.Second

	// dueLeadTime is how long before a time-bearing due instant the
	// reminder fires.
	dueLeadTime = time.Hour

	// dateOnlyFireHour is the local hour a date-only task's reminder
	// fires on its due day.
	dateOnlyFireHour = 18
)

// Plan is the cached scheduling decision for one task's current due date.
// Fire is nil when the due instant is too close to remind usefully. The
// plan stays valid only while Due still matches the task's effective due
// instant.
type Plan struct {
	Due  time.Time  `json:"due"`
	Fire *time.Time `json:"fire,omitempty"`
}

// desiredFireAt is the fire time before any clamping: one hour ahead of a
// time-bearing due instant, or 18:00 local on a date-only task's due day.
func desiredFireAt(due time.Time, hasTime bool) time.Time {
	if hasTime {
		return due.Add(-dueLeadTime)
	}
	y, m, d := due.Date()
	return time.Date(y, m, d, dateOnlyFireHour, 0, 0, 0, due.Location())
}

// computeFire clamps the desired fire time to now plus the safety margin
// and drops it entirely when the clamped time is not strictly before the
// effective due instant.
func computeFire(due time.Time, hasTime bool, now time.Time) *time.Time {
	dueInstant := domain.EffectiveDueInstant(due, hasTime)
	fire := desiredFireAt(due, hasTime)

	if earliest := now.Add(scheduleSafetyMargin); fire.Before(earliest) {
		fire = earliest
	}
	if !fire.Before(dueInstant) {
		return nil
	}
	return &fire
}

// computePlan derives a fresh plan for a task that has a due date.
func computePlan(t *domain.Task, now time.Time) Plan {
	dueInstant := domain.EffectiveDueInstant(*t.DueDate, t.DueDateHasTime)
	return Plan{
		Due:  dueInstant,
		Fire: computeFire(*t.DueDate, t.DueDateHasTime, now),
	}
}

// eligible reports whether a task qualifies for a reminder plan at all:
// incomplete, has a due date, and the effective due instant is still ahead.
func eligible(t *domain.Task, now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return domain.EffectiveDueInstant(*t.DueDate, t.DueDateHasTime).After(now)
}

// renderBody builds the notification text for a task's reminder.
func renderBody(t *domain.Task) string {
	if t.DueDateHasTime {
		return fmt.Sprintf("%s due at %s", t.Title, t.DueDate.Format("15:04"))
	}
	return fmt.Sprintf("%s due by end of today", t.Title)
}

// UserPrefix is the identifier prefix covering every reminder of one user.
func UserPrefix(userID string) string {
	return IdentifierPrefix + userID + "."
}
