package repository

import (
	"context"

	"github.com/Hesed2817/taskflow-app/domain"
)

type ProjectRepository interface {
	// GetByID returns the project with its members set populated.
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// ListAccessible returns projects the user owns or is a member of, newest first.
	ListAccessible(ctx context.Context, userID string) ([]domain.Project, error)
	// ListOwnedBy returns projects owned by the user.
	ListOwnedBy(ctx context.Context, userID string) ([]domain.Project, error)
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, projectID, userID string) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	// RemoveMemberEverywhere drops the user from every project's members set.
	RemoveMemberEverywhere(ctx context.Context, userID string) error
	// SetOwner rewrites the owner column only; membership swaps are the
	// caller's responsibility and must share the same transaction.
	SetOwner(ctx context.Context, projectID, ownerID string) error
}
