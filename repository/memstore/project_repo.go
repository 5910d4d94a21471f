package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Hesed2817/taskflow-app/domain"
	"github.com/Hesed2817/taskflow-app/repository"
)

// Projects returns the in-memory ProjectRepository view of the store.
func (s *Store) Projects() repository.ProjectRepository {
	return (*projectRepo)(s)
}

type projectRepo Store

func (r *projectRepo) store() *Store { return (*Store)(r) }

func (r *projectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	defer r.store().lock(ctx)()
	return r.get(id)
}

func (r *projectRepo) get(id string) (*domain.Project, error) {
	project, ok := r.data.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	project.Members = append([]string(nil), project.Members...)
	return &project, nil
}

func (r *projectRepo) ListAccessible(ctx context.Context, userID string) ([]domain.Project, error) {
	defer r.store().lock(ctx)()
	return r.collect(func(p *domain.Project) bool {
		return p.IsOwner(userID) || p.IsMember(userID)
	}), nil
}

func (r *projectRepo) ListOwnedBy(ctx context.Context, userID string) ([]domain.Project, error) {
	defer r.store().lock(ctx)()
	return r.collect(func(p *domain.Project) bool {
		return p.IsOwner(userID)
	}), nil
}

func (r *projectRepo) collect(match func(*domain.Project) bool) []domain.Project {
	var out []domain.Project
	for _, project := range r.data.projects {
		p := project
		p.Members = append([]string(nil), p.Members...)
		if match(&p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.data.seq[out[i].ID] > r.data.seq[out[j].ID]
	})
	return out
}

func (r *projectRepo) Create(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	defer r.store().lock(ctx)()

	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	stored := *project
	stored.Members = append([]string(nil), project.Members...)
	r.data.projects[project.ID] = stored
	r.store().touch(project.ID)
	return nil
}

func (r *projectRepo) Update(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	defer r.store().lock(ctx)()

	existing, ok := r.data.projects[project.ID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	existing.Name = project.Name
	existing.Description = project.Description
	existing.StartDate = project.StartDate
	existing.EndDate = project.EndDate
	existing.UpdatedAt = time.Now()
	r.data.projects[project.ID] = existing
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, id string) error {
	defer r.store().lock(ctx)()
	if _, ok := r.data.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.data.projects, id)
	return nil
}

func (r *projectRepo) AddMember(ctx context.Context, projectID, userID string) error {
	defer r.store().lock(ctx)()

	project, ok := r.data.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	if project.IsMember(userID) {
		return domain.ErrAlreadyMember
	}
	project.Members = append(append([]string(nil), project.Members...), userID)
	r.data.projects[projectID] = project
	return nil
}

func (r *projectRepo) RemoveMember(ctx context.Context, projectID, userID string) error {
	defer r.store().lock(ctx)()

	project, ok := r.data.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	filtered := project.Members[:0:0]
	for _, id := range project.Members {
		if id != userID {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == len(project.Members) {
		return domain.ErrNotAMember
	}
	project.Members = filtered
	r.data.projects[projectID] = project
	return nil
}

func (r *projectRepo) RemoveMemberEverywhere(ctx context.Context, userID string) error {
	defer r.store().lock(ctx)()

	for id, project := range r.data.projects {
		filtered := project.Members[:0:0]
		for _, memberID := range project.Members {
			if memberID != userID {
				filtered = append(filtered, memberID)
			}
		}
		project.Members = filtered
		r.data.projects[id] = project
	}
	return nil
}

func (r *projectRepo) SetOwner(ctx context.Context, projectID, ownerID string) error {
	defer r.store().lock(ctx)()

	project, ok := r.data.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	project.OwnerID = ownerID
	project.UpdatedAt = time.Now()
	r.data.projects[projectID] = project
	return nil
}
