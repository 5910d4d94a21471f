package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hesed2817/taskflow-app/domain"
	"github.com/Hesed2817/taskflow-app/repository"
)

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository returns a Postgres-backed implementation of ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) repository.ProjectRepository {
	return &projectRepository{pool: pool}
}

const projectColumns = `p.id, p.name, p.description, p.start_date, p.end_date, p.owner_id, p.created_at, p.updated_at`

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	q := resolve(ctx, r.pool)

	row := q.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx,
		`SELECT user_id FROM project_members WHERE project_id = $1 ORDER BY added_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, err
		}
		project.Members = append(project.Members, memberID)
	}
	return project, rows.Err()
}

func (r *projectRepository) ListAccessible(ctx context.Context, userID string) ([]domain.Project, error) {
	const query = `
	SELECT ` + projectColumns + `
	FROM projects p
	WHERE p.owner_id = $1
	   OR EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = $1)
	ORDER BY p.created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *projectRepository) ListOwnedBy(ctx context.Context, userID string) ([]domain.Project, error) {
	const query = `
	SELECT ` + projectColumns + `
	FROM projects p
	WHERE p.owner_id = $1
	ORDER BY p.created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *projectRepository) list(ctx context.Context, query string, args ...any) ([]domain.Project, error) {
	rows, err := resolve(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Populate members per project; the listing sizes here are small.
	for i := range projects {
		full, err := r.GetByID(ctx, projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].Members = full.Members
	}
	return projects, nil
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO projects (id, name, description, start_date, end_date, owner_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at, updated_at
	`
	return resolve(ctx, r.pool).QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		nullTime(project.StartDate),
		nullTime(project.EndDate),
		project.OwnerID,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE projects
	SET name = $2,
		description = $3,
		start_date = $4,
		end_date = $5,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	err := resolve(ctx, r.pool).QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		nullTime(project.StartDate),
		nullTime(project.EndDate),
	).Scan(&project.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrProjectNotFound
	}
	return err
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	tag, err := resolve(ctx, r.pool).Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *projectRepository) AddMember(ctx context.Context, projectID, userID string) error {
	const query = `INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)`
	if _, err := resolve(ctx, r.pool).Exec(ctx, query, projectID, userID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyMember
		}
		return err
	}
	return nil
}

func (r *projectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	tag, err := resolve(ctx, r.pool).Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotAMember
	}
	return nil
}

func (r *projectRepository) RemoveMemberEverywhere(ctx context.Context, userID string) error {
	_, err := resolve(ctx, r.pool).Exec(ctx,
		`DELETE FROM project_members WHERE user_id = $1`, userID)
	return err
}

func (r *projectRepository) SetOwner(ctx context.Context, projectID, ownerID string) error {
	tag, err := resolve(ctx, r.pool).Exec(ctx,
		`UPDATE projects SET owner_id = $2, updated_at = NOW() WHERE id = $1`, projectID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var project domain.Project
	var (
		description *string
		start, end  *time.Time
	)
	if err := row.Scan(
		&project.ID,
		&project.Name,
		&description,
		&start,
		&end,
		&project.OwnerID,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	if description != nil {
		project.Description = *description
	}
	project.StartDate = start
	project.EndDate = end
	return &project, nil
}
