package project

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Hesed2817/taskflow-app/domain"
	"github.com/Hesed2817/taskflow-app/repository"
	"github.com/Hesed2817/taskflow-app/usecase/cascade"
)

type UseCase struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	users    repository.UserRepository
	tx       repository.TxManager
	cascade  *cascade.Coordinator
	logger   *zap.Logger
}

func New(
	projects repository.ProjectRepository,
	tasks repository.TaskRepository,
	users repository.UserRepository,
	tx repository.TxManager,
	casc *cascade.Coordinator,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		projects: projects,
		tasks:    tasks,
		users:    users,
		tx:       tx,
		cascade:  casc,
		logger:   logger,
	}
}

// CreateInput carries the shape-validated fields for a new project.
type CreateInput struct {
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

// UpdateInput patches a project. Nil fields stay untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// Create stores a project owned by ownerID. The owner is implicit and never
// listed in the members set.
func (uc *UseCase) Create(ctx context.Context, ownerID string, in CreateInput) (*domain.Project, error) {
	if err := domain.ValidateProjectName(in.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateProjectDescription(in.Description); err != nil {
		return nil, err
	}

	project := &domain.Project{
		Name:        in.Name,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		OwnerID:     ownerID,
		Members:     []string{},
	}
	if err := uc.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	uc.logger.Info("project created", zap.String("project_id", project.ID), zap.String("owner_id", ownerID))
	return project, nil
}

// Get returns the project if the actor is its owner or a member.
func (uc *UseCase) Get(ctx context.Context, actorID, projectID string) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !domain.CanReadProject(actorID, project) {
		return nil, domain.ErrForbidden
	}
	return project, nil
}

// List returns every project the actor owns or belongs to, newest first.
func (uc *UseCase) List(ctx context.Context, actorID string) ([]domain.Project, error) {
	return uc.projects.ListAccessible(ctx, actorID)
}

// Update applies a patch; only the owner may update.
func (uc *UseCase) Update(ctx context.Context, actorID, projectID string, in UpdateInput) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !domain.CanUpdateProject(actorID, project) {
		return nil, domain.ErrForbidden
	}

	if in.Name != nil {
		if err := domain.ValidateProjectName(*in.Name); err != nil {
			return nil, err
		}
		project.Name = *in.Name
	}
	if in.Description != nil {
		if err := domain.ValidateProjectDescription(*in.Description); err != nil {
			return nil, err
		}
		project.Description = *in.Description
	}
	if in.StartDate != nil {
		project.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		project.EndDate = in.EndDate
	}

	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// AddMember appends a user to the members set. Only the owner manages
// membership, and the owner can never be double-listed as a member. The
// checks and the append share one transaction so a concurrent ownership
// transfer cannot make the new owner a member of their own project.
func (uc *UseCase) AddMember(ctx context.Context, actorID, projectID, userID string) (*domain.Project, error) {
	var project *domain.Project
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		project, err = uc.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if !domain.CanManageMembers(actorID, project) {
			return domain.ErrForbidden
		}
		if _, err := uc.users.GetByID(ctx, userID); err != nil {
			return err
		}
		if project.IsOwner(userID) || project.IsMember(userID) {
			return domain.ErrAlreadyMember
		}
		return uc.projects.AddMember(ctx, projectID, userID)
	})
	if err != nil {
		return nil, err
	}
	project.Members = append(project.Members, userID)
	return project, nil
}

// RemoveMember drops a user from the members set. The precondition check
// (no tasks assigned to them in this project) and the removal share one
// transaction so a concurrent assignment cannot slip between them.
func (uc *UseCase) RemoveMember(ctx context.Context, actorID, projectID, userID string) error {
	return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		project, err := uc.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if !domain.CanManageMembers(actorID, project) {
			return domain.ErrForbidden
		}
		if project.IsOwner(userID) {
			return domain.ErrCannotRemoveOwner
		}
		if !project.IsMember(userID) {
			return domain.ErrNotAMember
		}

		assigned, err := uc.tasks.CountAssigned(ctx, projectID, userID)
		if err != nil {
			return err
		}
		if assigned > 0 {
			return domain.MemberHasAssignedTasks(assigned)
		}
		return uc.projects.RemoveMember(ctx, projectID, userID)
	})
}

// TransferOwnership atomically swaps ownership to a current member: the new
// owner leaves the members set and the old owner joins it. A failed attempt
// leaves both the owner and the members set untouched.
func (uc *UseCase) TransferOwnership(ctx context.Context, actorID, projectID, newOwnerID string) error {
	return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		project, err := uc.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if !project.IsOwner(actorID) {
			return domain.ErrForbidden
		}
		if newOwnerID == actorID {
			return domain.ErrSameOwner
		}
		if !project.IsMember(newOwnerID) {
			return domain.ErrNotATeamMember
		}

		if err := uc.projects.SetOwner(ctx, projectID, newOwnerID); err != nil {
			return err
		}
		if err := uc.projects.RemoveMember(ctx, projectID, newOwnerID); err != nil {
			return err
		}
		if err := uc.projects.AddMember(ctx, projectID, actorID); err != nil {
			return err
		}

		uc.logger.Info("ownership transferred",
			zap.String("project_id", projectID),
			zap.String("from", actorID),
			zap.String("to", newOwnerID))
		return nil
	})
}

// Delete removes the project and all of its tasks; owner only.
func (uc *UseCase) Delete(ctx context.Context, actorID, projectID string) error {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !domain.CanDeleteProject(actorID, project) {
		return domain.ErrForbidden
	}
	return uc.cascade.DeleteProject(ctx, projectID)
}
