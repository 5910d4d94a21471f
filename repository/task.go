package repository

import (
	"context"

	"github.com/Hesed2817/taskflow-app/domain"
)

// TaskFilter narrows task queries. ProjectIDs scopes the search to projects
// the caller can access; an empty slice means no accessible projects.
type TaskFilter struct {
	ProjectIDs []string
	Status     domain.TaskStatus
	Priority   domain.TaskPriority
	AssigneeID string
	// TitleSearch is a case-insensitive substring match.
	TitleSearch string
	Limit       int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Task, error)
	Filter(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error

	// CountAssigned returns how many tasks in the project are assigned to the user.
	CountAssigned(ctx context.Context, projectID, userID string) (int, error)
	// DeleteByProject removes every task in the project and returns the count.
	DeleteByProject(ctx context.Context, projectID string) (int, error)
	// UnassignUser clears the assignee on every task assigned to the user.
	UnassignUser(ctx context.Context, userID string) error
	// DisownUser clears the creator on every task the user created. Tasks in
	// other owners' projects outlive their creator with the reference dangling.
	DisownUser(ctx context.Context, userID string) error
}
