package task

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Hesed2817/taskflow-app/domain"
	"github.com/Hesed2817/taskflow-app/repository"
)

const searchTermMaxLen = 100

type UseCase struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	logger   *zap.Logger
}

func New(tasks repository.TaskRepository, projects repository.ProjectRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		projects: projects,
		logger:   logger,
	}
}

// CreateInput carries the shape-validated fields for a new task.
type CreateInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	AssigneeID  string
	DueDate     *time.Time
}

// UpdateInput patches a task. Nil fields stay untouched; an AssigneeID of ""
// unassigns the task.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	AssigneeID  *string
	DueDate     *time.Time
}

// FilterInput narrows the cross-project task search.
type FilterInput struct {
	Status     string
	Priority   string
	ProjectID  string
	AssigneeID string
	Search     string
}

// Create adds a task to a project the actor owns or belongs to. An assignee,
// when given, must be the project owner or a current member.
func (uc *UseCase) Create(ctx context.Context, actorID, projectID string, in CreateInput) (*domain.Task, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !domain.CanCreateTask(actorID, project) {
		return nil, domain.ErrForbidden
	}
	if err := domain.ValidateTaskTitle(in.Title); err != nil {
		return nil, err
	}
	if err := domain.ValidateTaskDescription(in.Description); err != nil {
		return nil, err
	}

	if in.Status == "" {
		in.Status = domain.StatusTodo
	}
	if !domain.ValidStatus(in.Status) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "invalid status value")
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(in.Priority) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "invalid priority value")
	}

	if in.AssigneeID != "" && !domain.CanBeAssigned(in.AssigneeID, project) {
		return nil, domain.ErrNotAProjectMember
	}

	task := &domain.Task{
		ProjectID:   projectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		AssigneeID:  in.AssigneeID,
		CreatorID:   actorID,
		DueDate:     in.DueDate,
	}
	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Get returns the task if the actor can read its parent project.
func (uc *UseCase) Get(ctx context.Context, actorID, taskID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	project, err := uc.projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !domain.CanReadTask(actorID, project) {
		return nil, domain.ErrForbidden
	}
	return task, nil
}

// ListByProject returns a project's tasks, newest first.
func (uc *UseCase) ListByProject(ctx context.Context, actorID, projectID string) ([]domain.Task, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !domain.CanReadProject(actorID, project) {
		return nil, domain.ErrForbidden
	}
	return uc.tasks.ListByProject(ctx, projectID)
}

// Update patches a task. The project owner, the task creator, and the
// current assignee may update. Membership is re-validated against freshly
// loaded state whenever the assignee changes to a non-empty value.
func (uc *UseCase) Update(ctx context.Context, actorID, taskID string, in UpdateInput) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	project, err := uc.projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !domain.CanUpdateTask(actorID, project, task) {
		return nil, domain.ErrForbidden
	}

	if in.Title != nil {
		if err := domain.ValidateTaskTitle(*in.Title); err != nil {
			return nil, err
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		if err := domain.ValidateTaskDescription(*in.Description); err != nil {
			return nil, err
		}
		task.Description = *in.Description
	}
	if in.Status != nil {
		if !domain.ValidStatus(*in.Status) {
			return nil, domain.NewError(domain.ErrCodeInvalid, "invalid status value")
		}
		task.Status = *in.Status
	}
	if in.Priority != nil {
		if !domain.ValidPriority(*in.Priority) {
			return nil, domain.NewError(domain.ErrCodeInvalid, "invalid priority value")
		}
		task.Priority = *in.Priority
	}
	if in.AssigneeID != nil {
		// Empty string normalizes to unassigned.
		if *in.AssigneeID != "" && !domain.CanBeAssigned(*in.AssigneeID, project) {
			return nil, domain.ErrNotAProjectMember
		}
		task.AssigneeID = *in.AssigneeID
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task; project owner or task creator only.
func (uc *UseCase) Delete(ctx context.Context, actorID, taskID string) error {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	project, err := uc.projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		return err
	}
	if !domain.CanDeleteTask(actorID, project, task) {
		return domain.ErrForbidden
	}
	return uc.tasks.Delete(ctx, taskID)
}

// Filter searches tasks across every project the actor can access. Unknown
// enum values in the filter are ignored rather than rejected; the title
// search is case-insensitive, truncated to 100 characters, and results are
// capped at 100, newest first.
func (uc *UseCase) Filter(ctx context.Context, actorID string, in FilterInput) ([]domain.Task, error) {
	accessible, err := uc.projects.ListAccessible(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if len(accessible) == 0 {
		return nil, nil
	}

	projectIDs := make([]string, 0, len(accessible))
	for _, p := range accessible {
		projectIDs = append(projectIDs, p.ID)
	}

	if in.ProjectID != "" {
		var scoped bool
		for _, id := range projectIDs {
			if id == in.ProjectID {
				projectIDs = []string{id}
				scoped = true
				break
			}
		}
		if !scoped {
			return nil, nil
		}
	}

	filter := repository.TaskFilter{
		ProjectIDs: projectIDs,
		AssigneeID: in.AssigneeID,
		Limit:      100,
	}
	if domain.ValidStatus(domain.TaskStatus(in.Status)) {
		filter.Status = domain.TaskStatus(in.Status)
	}
	if domain.ValidPriority(domain.TaskPriority(in.Priority)) {
		filter.Priority = domain.TaskPriority(in.Priority)
	}
	if search := strings.TrimSpace(in.Search); search != "" {
		// Truncate on rune boundaries so a multi-byte character is never split.
		if runes := []rune(search); len(runes) > searchTermMaxLen {
			search = string(runes[:searchTermMaxLen])
		}
		filter.TitleSearch = search
	}

	return uc.tasks.Filter(ctx, filter)
}
