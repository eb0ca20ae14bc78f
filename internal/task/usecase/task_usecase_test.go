package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"taskpulse-backend/internal/settings"
	"taskpulse-backend/internal/task/domain"
	taskdto "taskpulse-backend/internal/task/dto"
	"taskpulse-backend/internal/task/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskRepo struct {
	mu      sync.Mutex
	tasks   map[string]*domain.Task
	deleted map[string]*domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks:   make(map[string]*domain.Task),
		deleted: make(map[string]*domain.Task),
	}
}

func (r *fakeTaskRepo) Create(task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) FindByID(id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) FindByUserID(userID string, _ repository.Filter) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.tasks {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return errors.New("not found")
	}
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return errors.New("not found")
	}
	delete(r.tasks, id)
	r.deleted[id] = t
	return nil
}

func (r *fakeTaskRepo) FindDeletedByUserID(userID string) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.deleted {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) FindDeletedByID(id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.deleted[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) Restore(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.deleted[id]
	if !ok {
		return errors.New("not found")
	}
	delete(r.deleted, id)
	r.tasks[id] = t
	return nil
}

func (r *fakeTaskRepo) Purge(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.deleted, id)
	return nil
}

type fakeSettingsRepo struct {
	byUser map[string]*settings.Settings
}

func (r *fakeSettingsRepo) Get(userID string) (*settings.Settings, error) {
	if s, ok := r.byUser[userID]; ok {
		return s, nil
	}
	return settings.Defaults(userID), nil
}

func (r *fakeSettingsRepo) Save(s *settings.Settings) error {
	r.byUser[s.UserID] = s
	return nil
}

type fakeCounter struct {
	points map[string]int
}

func (c *fakeCounter) Increment(userID string) (int, error) {
	c.points[userID]++
	return c.points[userID], nil
}

func (c *fakeCounter) Value(userID string) (int, error) {
	return c.points[userID], nil
}

type fakeKicker struct {
	mu    sync.Mutex
	kicks []string
}

func (k *fakeKicker) Kick(userID string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kicks = append(k.kicks, userID)
}

func (k *fakeKicker) count() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.kicks)
}

type fakeChanges struct {
	mu     sync.Mutex
	events []string
}

func (n *fakeChanges) Notify(_, name string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, name)
}

type fixture struct {
	uc       TaskUsecase
	repo     *fakeTaskRepo
	settings *fakeSettingsRepo
	counter  *fakeCounter
	kicker   *fakeKicker
	changes  *fakeChanges
}

func newFixture() *fixture {
	repo := newFakeTaskRepo()
	settingsRepo := &fakeSettingsRepo{byUser: make(map[string]*settings.Settings)}
	counter := &fakeCounter{points: make(map[string]int)}
	kicker := &fakeKicker{}
	changes := &fakeChanges{}
	return &fixture{
		uc:       NewTaskUsecase(repo, settingsRepo, counter, kicker, changes),
		repo:     repo,
		settings: settingsRepo,
		counter:  counter,
		kicker:   kicker,
		changes:  changes,
	}
}

func TestCreateTaskAssignsSubtaskIDs(t *testing.T) {
	f := newFixture()

	task, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{
		Title:    "Pack for trip",
		Priority: "high",
		Subtasks: []taskdto.SubtaskPayload{{Title: "Clothes"}, {Title: "Passport"}},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PriorityHigh, task.Priority)
	require.Len(t, task.Subtasks, 2)
	assert.NotEmpty(t, task.Subtasks[0].ID)
	assert.NotEmpty(t, task.Subtasks[1].ID)
	assert.False(t, task.Completed)
	assert.Equal(t, 1, f.kicker.count())
}

func TestCreateTaskWithAllSubtasksDonePromotesAndRewards(t *testing.T) {
	f := newFixture()

	task, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{
		Title: "Imported",
		Subtasks: []taskdto.SubtaskPayload{
			{Title: "a", Completed: true},
			{Title: "b", Completed: true},
		},
	})
	require.NoError(t, err)

	assert.True(t, task.Completed)
	assert.Equal(t, 1, f.counter.points["u1"])
}

func TestToggleCompletionCascadesAndRewardsOnce(t *testing.T) {
	f := newFixture()
	task, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{
		Title:    "Write report",
		Subtasks: []taskdto.SubtaskPayload{{Title: "draft"}, {Title: "review"}},
	})
	require.NoError(t, err)

	toggled, err := f.uc.ToggleCompletion("u1", task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	for _, st := range toggled.Subtasks {
		assert.True(t, st.Completed)
	}
	assert.Equal(t, 1, f.counter.points["u1"])

	// Reopening leaves subtasks done and never revokes the point.
	reopened, err := f.uc.ToggleCompletion("u1", task.ID)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	for _, st := range reopened.Subtasks {
		assert.True(t, st.Completed)
	}
	assert.Equal(t, 1, f.counter.points["u1"])
}

func TestToggleSubtaskPromotesParent(t *testing.T) {
	f := newFixture()
	task, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{
		Title:    "Errands",
		Subtasks: []taskdto.SubtaskPayload{{Title: "bank"}, {Title: "groceries", Completed: true}},
	})
	require.NoError(t, err)

	toggled, err := f.uc.ToggleSubtask("u1", task.ID, task.Subtasks[0].ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.Equal(t, 1, f.counter.points["u1"])

	// Reopening a subtask demotes the parent but keeps the point.
	demoted, err := f.uc.ToggleSubtask("u1", task.ID, task.Subtasks[0].ID)
	require.NoError(t, err)
	assert.False(t, demoted.Completed)
	assert.Equal(t, 1, f.counter.points["u1"])
}

func TestToggleSubtaskUnknownID(t *testing.T) {
	f := newFixture()
	task, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{
		Title:    "Errands",
		Subtasks: []taskdto.SubtaskPayload{{Title: "bank"}},
	})
	require.NoError(t, err)

	_, err = f.uc.ToggleSubtask("u1", task.ID, "nope")
	assert.ErrorIs(t, err, ErrSubtaskNotFound)
}

func TestUpdateTaskRewardsStoredTransition(t *testing.T) {
	f := newFixture()
	task, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{Title: "Solo"})
	require.NoError(t, err)

	updated, err := f.uc.UpdateTask("u1", task.ID, &taskdto.UpdateTaskRequest{
		Title:     "Solo",
		Completed: true,
	})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, 1, f.counter.points["u1"])

	// Saving an already-completed task again is not a transition.
	_, err = f.uc.UpdateTask("u1", task.ID, &taskdto.UpdateTaskRequest{
		Title:     "Solo renamed",
		Completed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.counter.points["u1"])
}

func TestUpdateAcceptsCompletedParentWithOpenSubtasks(t *testing.T) {
	f := newFixture()
	task, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{Title: "Historic"})
	require.NoError(t, err)

	// Wholesale writes only reconcile forward: a completed parent with
	// open subtasks is stored exactly as given.
	updated, err := f.uc.UpdateTask("u1", task.ID, &taskdto.UpdateTaskRequest{
		Title:     "Historic",
		Completed: true,
		Subtasks:  []taskdto.SubtaskPayload{{ID: "s1", Title: "open"}},
	})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.False(t, updated.Subtasks[0].Completed)
}

func TestCompletionEffectsOffSuppressesReward(t *testing.T) {
	f := newFixture()
	f.settings.byUser["u1"] = &settings.Settings{
		UserID:            "u1",
		CompletionEffects: false,
		DueSoonReminders:  true,
	}

	task, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{Title: "Quiet"})
	require.NoError(t, err)

	_, err = f.uc.ToggleCompletion("u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.counter.points["u1"])
}

func TestTaskOwnershipEnforced(t *testing.T) {
	f := newFixture()
	task, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{Title: "Mine"})
	require.NoError(t, err)

	_, err = f.uc.GetTask("u2", task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = f.uc.ToggleCompletion("u2", task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	err = f.uc.DeleteTask("u2", task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteRestorePurge(t *testing.T) {
	f := newFixture()
	task, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{Title: "Ephemeral"})
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteTask("u1", task.ID))

	_, err = f.uc.GetTask("u1", task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	held, err := f.uc.ListDeleted("u1")
	require.NoError(t, err)
	require.Len(t, held, 1)

	restored, err := f.uc.RestoreTask("u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, restored.ID)

	got, err := f.uc.GetTask("u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ephemeral", got.Title)

	require.NoError(t, f.uc.DeleteTask("u1", task.ID))
	require.NoError(t, f.uc.PurgeTask("u1", task.ID))

	held, err = f.uc.ListDeleted("u1")
	require.NoError(t, err)
	assert.Empty(t, held)

	_, err = f.uc.RestoreTask("u1", task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListTasksOverdueFilter(t *testing.T) {
	f := newFixture()
	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	_, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{
		Title: "Late", DueDate: &past, DueDateHasTime: true,
	})
	require.NoError(t, err)
	_, err = f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{
		Title: "Upcoming", DueDate: &future, DueDateHasTime: true,
	})
	require.NoError(t, err)

	overdue, err := f.uc.ListTasks("u1", ListFilter{Overdue: true})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Late", overdue[0].Title)
}

func TestSearchTasksRanksTitleMatchesFirst(t *testing.T) {
	f := newFixture()

	_, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{
		Title:       "Weekly groceries",
		Description: "milk, eggs",
	})
	require.NoError(t, err)
	_, err = f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{
		Title:       "Chores",
		Description: "pick up groceries on the way home",
	})
	require.NoError(t, err)
	_, err = f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{Title: "Tax return"})
	require.NoError(t, err)

	results, err := f.uc.SearchTasks("u1", "groceries")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Weekly groceries", results[0].Title)

	// Typos within the tolerance still match.
	results, err = f.uc.SearchTasks("u1", "grocries")
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture()
	past := time.Now().Add(-48 * time.Hour)

	done, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{Title: "Done"})
	require.NoError(t, err)
	_, err = f.uc.ToggleCompletion("u1", done.ID)
	require.NoError(t, err)

	_, err = f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{
		Title: "Late", DueDate: &past, DueDateHasTime: true,
	})
	require.NoError(t, err)

	stats, err := f.uc.Dashboard("u1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Overdue)
	assert.InDelta(t, 0.5, stats.CompletionRate, 0.001)
	assert.Equal(t, 1, stats.LuckPoints)
}

func TestReminderStateReflectsSettings(t *testing.T) {
	f := newFixture()
	_, err := f.uc.CreateTask("u1", &taskdto.CreateTaskRequest{Title: "Any"})
	require.NoError(t, err)

	tasks, enabled, err := f.uc.ReminderState(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.True(t, enabled)

	f.settings.byUser["u1"] = &settings.Settings{UserID: "u1", CompletionEffects: true}
	_, enabled, err = f.uc.ReminderState(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, enabled)
}
