package reminder

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"taskpulse-backend/internal/task/domain"
)

// Request describes one reminder the notification service should install.
// The scheduler owns the identifier namespace and the full list
// composition; the service is a dumb installer.
type Request struct {
	Identifier string    `json:"identifier"`
	UserID     string    `json:"user_id"`
	TaskID     string    `json:"task_id"`
	FireAt     time.Time `json:"fire_at"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
}

// Notifier is the external notification collaborator. Scheduling is
// advisory: the scheduler never fails a caller because of it.
type Notifier interface {
	// Authorized reports whether reminders can currently be delivered
	// for the user.
	Authorized(ctx context.Context, userID string) bool
	// CancelAll removes every installed reminder whose identifier starts
	// with the given prefix.
	CancelAll(ctx context.Context, identifierPrefix string)
	// Schedule installs one reminder, replacing any previous one with
	// the same identifier.
	Schedule(ctx context.Context, req Request) error
}

// Source supplies the current state the background worker syncs from.
type Source interface {
	// ReminderState returns the user's live tasks and whether due-soon
	// reminders are enabled for them.
	ReminderState(ctx context.Context, userID string) ([]domain.Task, bool, error)
}

// Scheduler maps a user's task collection to the authoritative set of
// pending reminders: at most one per task, at most maxPendingReminders per
// user, fire times stable across repeated syncs while due dates hold still.
type Scheduler struct {
	cache    PlanCache
	notifier Notifier
	source   Source

	// mu serializes Sync: overlapping runs of the clear-then-install
	// protocol could leave stale entries installed.
	mu sync.Mutex

	kickMu  sync.Mutex
	pending map[string]bool
	kicks   chan string
}

func NewScheduler(cache PlanCache, notifier Notifier, source Source) *Scheduler {
	return &Scheduler{
		cache:    cache,
		notifier: notifier,
		source:   source,
		pending:  make(map[string]bool),
		kicks:    make(chan string, 256),
	}
}

// Kick requests a background re-sync for the user. Multiple kicks before
// the worker gets to the user coalesce into one sync from the latest
// state. Safe to call fire-and-forget after every mutation.
func (s *Scheduler) Kick(userID string) {
	s.kickMu.Lock()
	if s.pending[userID] {
		s.kickMu.Unlock()
		return
	}
	s.pending[userID] = true
	s.kickMu.Unlock()

	select {
	case s.kicks <- userID:
	default:
		// Queue full; drop the flag so the next mutation retries.
		s.kickMu.Lock()
		delete(s.pending, userID)
		s.kickMu.Unlock()
		log.Printf("[Reminder] Kick queue full, dropping sync request for user %s", userID)
	}
}

// Run is the single sync worker; one worker means at most one sync in
// flight. Start it once in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case userID := <-s.kicks:
			// Clear the flag before reading state so a mutation that
			// lands mid-sync queues a fresh pass over the final state.
			s.kickMu.Lock()
			delete(s.pending, userID)
			s.kickMu.Unlock()

			tasks, enabled, err := s.source.ReminderState(ctx, userID)
			if err != nil {
				log.Printf("[Reminder] Failed to load state for user %s: %v", userID, err)
				continue
			}
			if _, err := s.Sync(ctx, userID, tasks, time.Now(), enabled); err != nil {
				log.Printf("[Reminder] Sync failed for user %s: %v", userID, err)
			}
		}
	}
}

// Sync derives the desired reminder set for one user's tasks at the given
// time, reconciles the plan cache, and replaces everything installed in
// the user's identifier namespace. Returns the emitted requests.
//
// When reminders are disabled or delivery is unauthorized, the cache
// bookkeeping still runs (plans stay warm for when delivery comes back)
// but nothing is installed and the namespace is cleared.
func (s *Scheduler) Sync(ctx context.Context, userID string, tasks []domain.Task, now time.Time, enabled bool) ([]Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cached, err := s.cache.Load(ctx, userID)
	if err != nil {
		// Stability lost, correctness kept: recompute everything.
		log.Printf("[Reminder] Plan cache load failed for user %s: %v", userID, err)
		cached = map[string]Plan{}
	}

	// One plan per eligible task, reusing the cached fire time while the
	// due instant is unchanged. Ineligible tasks fall out of the next
	// cache generation.
	next := make(map[string]Plan)
	type candidate struct {
		task *domain.Task
		plan Plan
	}
	var candidates []candidate

	for i := range tasks {
		t := &tasks[i]
		if !eligible(t, now) {
			continue
		}

		dueInstant := domain.EffectiveDueInstant(*t.DueDate, t.DueDateHasTime)
		plan, ok := cached[t.ID]
		if !ok || !plan.Due.Equal(dueInstant) {
			plan = computePlan(t, now)
		}
		next[t.ID] = plan

		if plan.Fire != nil {
			candidates = append(candidates, candidate{task: t, plan: plan})
		}
	}

	if err := s.cache.Save(ctx, userID, next); err != nil {
		log.Printf("[Reminder] Plan cache save failed for user %s: %v", userID, err)
	}

	prefix := UserPrefix(userID)

	if !enabled || !s.notifier.Authorized(ctx, userID) {
		s.notifier.CancelAll(ctx, prefix)
		return nil, nil
	}

	// Earliest fire times win the capacity budget.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.plan.Fire.Equal(*b.plan.Fire) {
			return a.plan.Fire.Before(*b.plan.Fire)
		}
		return a.task.ID < b.task.ID
	})
	if len(candidates) > maxPendingReminders {
		candidates = candidates[:maxPendingReminders]
	}

	s.notifier.CancelAll(ctx, prefix)

	requests := make([]Request, 0, len(candidates))
	for _, c := range candidates {
		req := Request{
			Identifier: prefix + c.task.ID,
			UserID:     userID,
			TaskID:     c.task.ID,
			FireAt:     *c.plan.Fire,
			Title:      "TaskPulse",
			Body:       renderBody(c.task),
		}
		if err := s.notifier.Schedule(ctx, req); err != nil {
			log.Printf("[Reminder] Failed to schedule %s: %v", req.Identifier, err)
			continue
		}
		requests = append(requests, req)
	}

	return requests, nil
}
