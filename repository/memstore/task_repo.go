package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Hesed2817/taskflow-app/domain"
	"github.com/Hesed2817/taskflow-app/repository"
)

// Tasks returns the in-memory TaskRepository view of the store.
func (s *Store) Tasks() repository.TaskRepository {
	return (*taskRepo)(s)
}

type taskRepo Store

func (r *taskRepo) store() *Store { return (*Store)(r) }

func (r *taskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	defer r.store().lock(ctx)()
	task, ok := r.data.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (r *taskRepo) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	defer r.store().lock(ctx)()
	return r.collect(func(t *domain.Task) bool {
		return t.ProjectID == projectID
	}, 0), nil
}

func (r *taskRepo) Filter(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	defer r.store().lock(ctx)()

	if len(filter.ProjectIDs) == 0 {
		return nil, nil
	}
	scope := make(map[string]bool, len(filter.ProjectIDs))
	for _, id := range filter.ProjectIDs {
		scope[id] = true
	}
	search := strings.ToLower(filter.TitleSearch)

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	return r.collect(func(t *domain.Task) bool {
		if !scope[t.ProjectID] {
			return false
		}
		if filter.Status != "" && t.Status != filter.Status {
			return false
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			return false
		}
		if filter.AssigneeID != "" && t.AssigneeID != filter.AssigneeID {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			return false
		}
		return true
	}, limit), nil
}

func (r *taskRepo) collect(match func(*domain.Task) bool, limit int) []domain.Task {
	var out []domain.Task
	for _, task := range r.data.tasks {
		t := task
		if match(&t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.data.seq[out[i].ID] > r.data.seq[out[j].ID]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *taskRepo) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	defer r.store().lock(ctx)()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.data.tasks[task.ID] = *task
	r.store().touch(task.ID)
	return nil
}

func (r *taskRepo) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	defer r.store().lock(ctx)()

	if _, ok := r.data.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	r.data.tasks[task.ID] = *task
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, id string) error {
	defer r.store().lock(ctx)()
	if _, ok := r.data.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.data.tasks, id)
	return nil
}

func (r *taskRepo) CountAssigned(ctx context.Context, projectID, userID string) (int, error) {
	defer r.store().lock(ctx)()

	var count int
	for _, task := range r.data.tasks {
		if task.ProjectID == projectID && task.AssigneeID == userID {
			count++
		}
	}
	return count, nil
}

func (r *taskRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	defer r.store().lock(ctx)()

	if err := r.store().FailTaskPurge; err != nil {
		return 0, err
	}
	var deleted int
	for id, task := range r.data.tasks {
		if task.ProjectID == projectID {
			delete(r.data.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *taskRepo) UnassignUser(ctx context.Context, userID string) error {
	defer r.store().lock(ctx)()

	for id, task := range r.data.tasks {
		if task.AssigneeID == userID {
			task.AssigneeID = ""
			task.UpdatedAt = time.Now()
			r.data.tasks[id] = task
		}
	}
	return nil
}

func (r *taskRepo) DisownUser(ctx context.Context, userID string) error {
	defer r.store().lock(ctx)()

	for id, task := range r.data.tasks {
		if task.CreatorID == userID {
			task.CreatorID = ""
			task.UpdatedAt = time.Now()
			r.data.tasks[id] = task
		}
	}
	return nil
}
