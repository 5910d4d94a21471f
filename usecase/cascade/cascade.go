// Package cascade implements the multi-entity deletion protocol. Cascades
// are explicit functions invoked by the lifecycle use cases rather than
// store-level triggers, so their ordering and atomicity stay auditable.
package cascade

import (
	"context"

	"go.uber.org/zap"

	"github.com/Hesed2817/taskflow-app/repository"
)

type Coordinator struct {
	tx       repository.TxManager
	users    repository.UserRepository
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	logger   *zap.Logger
}

func New(
	tx repository.TxManager,
	users repository.UserRepository,
	projects repository.ProjectRepository,
	tasks repository.TaskRepository,
	logger *zap.Logger,
) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		tx:       tx,
		users:    users,
		projects: projects,
		tasks:    tasks,
		logger:   logger,
	}
}

// DeleteProject removes a project and all of its tasks in one transaction.
// Tasks go first; if their deletion fails, the project must not outlive an
// inconsistent attempt and the whole transaction aborts.
func (c *Coordinator) DeleteProject(ctx context.Context, projectID string) error {
	return c.tx.WithinTx(ctx, func(ctx context.Context) error {
		return c.deleteProject(ctx, projectID)
	})
}

func (c *Coordinator) deleteProject(ctx context.Context, projectID string) error {
	deleted, err := c.tasks.DeleteByProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := c.projects.Delete(ctx, projectID); err != nil {
		return err
	}
	c.logger.Info("project cascade complete",
		zap.String("project_id", projectID),
		zap.Int("tasks_deleted", deleted))
	return nil
}

// DeleteUser removes a user and every record that references them, in one
// transaction: owned projects cascade (tasks first), remaining assignments
// and creator references are cleared, memberships are dropped, then the user
// row goes. Any failure aborts the whole cascade.
func (c *Coordinator) DeleteUser(ctx context.Context, userID string) error {
	return c.tx.WithinTx(ctx, func(ctx context.Context) error {
		owned, err := c.projects.ListOwnedBy(ctx, userID)
		if err != nil {
			return err
		}
		for _, project := range owned {
			if err := c.deleteProject(ctx, project.ID); err != nil {
				return err
			}
		}

		if err := c.tasks.UnassignUser(ctx, userID); err != nil {
			return err
		}
		if err := c.tasks.DisownUser(ctx, userID); err != nil {
			return err
		}
		if err := c.projects.RemoveMemberEverywhere(ctx, userID); err != nil {
			return err
		}
		if err := c.users.Delete(ctx, userID); err != nil {
			return err
		}

		c.logger.Info("user cascade complete",
			zap.String("user_id", userID),
			zap.Int("projects_deleted", len(owned)))
		return nil
	})
}
