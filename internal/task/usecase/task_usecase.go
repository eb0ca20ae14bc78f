package usecase

import (
	"context"
	"log"
	"sort"
	"time"

	"taskpulse-backend/internal/reward"
	"taskpulse-backend/internal/settings"
	"taskpulse-backend/internal/task/domain"
	taskdto "taskpulse-backend/internal/task/dto"
	"taskpulse-backend/internal/task/repository"
	"taskpulse-backend/pkg/fuzzy"

	"github.com/google/uuid"
)

// taskUsecase implements TaskUsecase. Every mutation follows the same
// tail: persist, kick the reminder scheduler, push a change event.
type taskUsecase struct {
	taskRepo     repository.TaskRepository
	settingsRepo settings.Repository
	luck         reward.Counter
	kicker       Kicker
	changes      ChangeNotifier
}

// NewTaskUsecase creates a new instance of taskUsecase
func NewTaskUsecase(
	taskRepo repository.TaskRepository,
	settingsRepo settings.Repository,
	luck reward.Counter,
	kicker Kicker,
	changes ChangeNotifier,
) TaskUsecase {
	return &taskUsecase{
		taskRepo:     taskRepo,
		settingsRepo: settingsRepo,
		luck:         luck,
		kicker:       kicker,
		changes:      changes,
	}
}

func (u *taskUsecase) CreateTask(userID string, req *taskdto.CreateTaskRequest) (*domain.Task, error) {
	task := &domain.Task{
		ID:             uuid.New().String(),
		UserID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDate,
		DueDateHasTime: req.DueDateHasTime,
		Priority:       domain.ParsePriority(req.Priority),
		Subtasks:       buildSubtasks(req.Subtasks),
	}

	justCompleted := domain.ReconcileOnWrite(task)

	if err := u.taskRepo.Create(task); err != nil {
		return nil, err
	}

	if justCompleted {
		u.awardLuck(userID)
	}
	u.afterMutation(userID, "task.created", task)
	return task, nil
}

func (u *taskUsecase) GetTask(userID, taskID string) (*domain.Task, error) {
	return u.findOwned(userID, taskID)
}

func (u *taskUsecase) ListTasks(userID string, filter ListFilter) ([]*domain.Task, error) {
	repoFilter := repository.Filter{
		Completed: filter.Completed,
		DueFrom:   filter.DueFrom,
		DueTo:     filter.DueTo,
	}
	if filter.Priority != "" {
		p := domain.ParsePriority(filter.Priority)
		repoFilter.Priority = &p
	}

	tasks, err := u.taskRepo.FindByUserID(userID, repoFilter)
	if err != nil {
		return nil, err
	}

	if filter.Overdue {
		now := time.Now()
		filtered := tasks[:0]
		for _, t := range tasks {
			if t.IsOverdue(now) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	return tasks, nil
}

func (u *taskUsecase) SearchTasks(userID, query string) ([]*domain.Task, error) {
	tasks, err := u.taskRepo.FindByUserID(userID, repository.Filter{})
	if err != nil {
		return nil, err
	}

	type scored struct {
		task  *domain.Task
		score float64
	}
	var matches []scored
	for _, t := range tasks {
		subtaskTitles := make([]string, 0, len(t.Subtasks))
		for _, st := range t.Subtasks {
			subtaskTitles = append(subtaskTitles, st.Title)
		}
		if !fuzzy.FuzzyMatchTask(query, t.Title, t.Description, subtaskTitles) {
			continue
		}
		matches = append(matches, scored{
			task:  t,
			score: fuzzy.CalculateRelevanceScore(query, t.Title, t.Description, subtaskTitles),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	out := make([]*domain.Task, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.task)
	}
	return out, nil
}

func (u *taskUsecase) UpdateTask(userID, taskID string, req *taskdto.UpdateTaskRequest) (*domain.Task, error) {
	task, err := u.findOwned(userID, taskID)
	if err != nil {
		return nil, err
	}

	wasCompleted := task.Completed

	task.Title = req.Title
	task.Description = req.Description
	task.DueDate = req.DueDate
	task.DueDateHasTime = req.DueDateHasTime
	task.Priority = domain.ParsePriority(req.Priority)
	task.Completed = req.Completed
	task.Subtasks = buildSubtasks(req.Subtasks)

	domain.ReconcileOnWrite(task)

	if err := u.taskRepo.Update(task); err != nil {
		return nil, err
	}

	// The luck edge is the stored false→true transition, however the
	// update arrived at it.
	if !wasCompleted && task.Completed {
		u.awardLuck(userID)
	}
	u.afterMutation(userID, "task.updated", task)
	return task, nil
}

func (u *taskUsecase) ToggleCompletion(userID, taskID string) (*domain.Task, error) {
	task, err := u.findOwned(userID, taskID)
	if err != nil {
		return nil, err
	}

	justCompleted := domain.ToggleCompletion(task)

	if err := u.taskRepo.Update(task); err != nil {
		return nil, err
	}

	if justCompleted {
		u.awardLuck(userID)
	}
	u.afterMutation(userID, "task.updated", task)
	return task, nil
}

func (u *taskUsecase) ToggleSubtask(userID, taskID, subtaskID string) (*domain.Task, error) {
	task, err := u.findOwned(userID, taskID)
	if err != nil {
		return nil, err
	}

	justCompleted, found := domain.ToggleSubtask(task, subtaskID)
	if !found {
		return nil, ErrSubtaskNotFound
	}

	if err := u.taskRepo.Update(task); err != nil {
		return nil, err
	}

	if justCompleted {
		u.awardLuck(userID)
	}
	u.afterMutation(userID, "task.updated", task)
	return task, nil
}

func (u *taskUsecase) DeleteTask(userID, taskID string) error {
	task, err := u.findOwned(userID, taskID)
	if err != nil {
		return err
	}

	if err := u.taskRepo.Delete(task.ID); err != nil {
		return err
	}

	u.afterMutation(userID, "task.deleted", map[string]string{"id": task.ID})
	return nil
}

func (u *taskUsecase) ListDeleted(userID string) ([]*domain.Task, error) {
	return u.taskRepo.FindDeletedByUserID(userID)
}

func (u *taskUsecase) RestoreTask(userID, taskID string) (*domain.Task, error) {
	task, err := u.taskRepo.FindDeletedByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.UserID != userID {
		return nil, ErrTaskNotFound
	}

	if err := u.taskRepo.Restore(task.ID); err != nil {
		return nil, err
	}
	task.DeletedAt.Valid = false

	u.afterMutation(userID, "task.restored", task)
	return task, nil
}

func (u *taskUsecase) PurgeTask(userID, taskID string) error {
	task, err := u.taskRepo.FindDeletedByID(taskID)
	if err != nil {
		return err
	}
	if task == nil || task.UserID != userID {
		return ErrTaskNotFound
	}
	return u.taskRepo.Purge(task.ID)
}

func (u *taskUsecase) Dashboard(userID string) (*taskdto.DashboardResponse, error) {
	tasks, err := u.taskRepo.FindByUserID(userID, repository.Filter{})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	todayEnd := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	stats := &taskdto.DashboardResponse{Total: len(tasks)}
	var progressSum float64
	for _, t := range tasks {
		progressSum += t.Progress()
		if t.Completed {
			stats.Completed++
			continue
		}
		stats.Pending++
		if t.IsOverdue(now) {
			stats.Overdue++
		}
		if due := t.EffectiveDue(); due != nil && !due.Before(now) && !due.After(todayEnd) {
			stats.DueToday++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total)
		stats.AverageProgress = progressSum / float64(stats.Total)
	}

	luck, err := u.luck.Value(userID)
	if err != nil {
		log.Printf("[Task] Failed to load luck counter for user %s: %v", userID, err)
	} else {
		stats.LuckPoints = luck
	}

	return stats, nil
}

func (u *taskUsecase) ReminderState(ctx context.Context, userID string) ([]domain.Task, bool, error) {
	prefs, err := u.settingsRepo.Get(userID)
	if err != nil {
		return nil, false, err
	}

	tasks, err := u.taskRepo.FindByUserID(userID, repository.Filter{})
	if err != nil {
		return nil, false, err
	}

	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *t)
	}
	return out, prefs.DueSoonReminders, nil
}

func (u *taskUsecase) findOwned(userID, taskID string) (*domain.Task, error) {
	task, err := u.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.UserID != userID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// awardLuck grants a point for a completion transition when completion
// effects are enabled. Reward failures never fail the mutation.
func (u *taskUsecase) awardLuck(userID string) {
	prefs, err := u.settingsRepo.Get(userID)
	if err != nil {
		log.Printf("[Task] Failed to load settings for user %s: %v", userID, err)
		return
	}
	if !prefs.CompletionEffects {
		return
	}
	if _, err := u.luck.Increment(userID); err != nil {
		log.Printf("[Task] Failed to award luck for user %s: %v", userID, err)
	}
}

func (u *taskUsecase) afterMutation(userID, event string, data any) {
	u.kicker.Kick(userID)
	u.changes.Notify(userID, event, data)
}

func buildSubtasks(payloads []taskdto.SubtaskPayload) []domain.Subtask {
	if len(payloads) == 0 {
		return nil
	}
	subtasks := make([]domain.Subtask, 0, len(payloads))
	for _, p := range payloads {
		id := p.ID
		if id == "" {
			id = uuid.New().String()
		}
		subtasks = append(subtasks, domain.Subtask{ID: id, Title: p.Title, Completed: p.Completed})
	}
	return subtasks
}
