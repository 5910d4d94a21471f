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

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, project_id, title, description, status, priority, assigned_to, created_by, due_date, created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := resolve(ctx, r.pool).QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE project_id = $1
	ORDER BY created_at DESC
	`
	rows, err := resolve(ctx, r.pool).Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *taskRepository) Filter(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if len(filter.ProjectIDs) == 0 {
		return nil, nil
	}

	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE project_id = ANY($1)
	  AND ($2 = '' OR status = $2)
	  AND ($3 = '' OR priority = $3)
	  AND ($4 = '' OR assigned_to = $4)
	  AND ($5 = '' OR title ILIKE '%' || $5 || '%')
	ORDER BY created_at DESC
	LIMIT $6
	`
	rows, err := resolve(ctx, r.pool).Query(ctx, query,
		filter.ProjectIDs,
		string(filter.Status),
		string(filter.Priority),
		filter.AssigneeID,
		escapeLike(filter.TitleSearch),
		clampLimit(filter.Limit, 100),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, project_id, title, description, status, priority, assigned_to, created_by, due_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING created_at, updated_at
	`
	return resolve(ctx, r.pool).QueryRow(ctx, query,
		task.ID,
		task.ProjectID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		nullString(task.AssigneeID),
		nullString(task.CreatorID),
		nullTime(task.DueDate),
	).Scan(&task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		status = $4,
		priority = $5,
		assigned_to = $6,
		due_date = $7,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	err := resolve(ctx, r.pool).QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		nullString(task.AssigneeID),
		nullTime(task.DueDate),
	).Scan(&task.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrTaskNotFound
	}
	return err
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	tag, err := resolve(ctx, r.pool).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) CountAssigned(ctx context.Context, projectID, userID string) (int, error) {
	var count int
	err := resolve(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE project_id = $1 AND assigned_to = $2`,
		projectID, userID,
	).Scan(&count)
	return count, err
}

func (r *taskRepository) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	tag, err := resolve(ctx, r.pool).Exec(ctx,
		`DELETE FROM tasks WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *taskRepository) UnassignUser(ctx context.Context, userID string) error {
	_, err := resolve(ctx, r.pool).Exec(ctx,
		`UPDATE tasks SET assigned_to = NULL, updated_at = NOW() WHERE assigned_to = $1`, userID)
	return err
}

func (r *taskRepository) DisownUser(ctx context.Context, userID string) error {
	_, err := resolve(ctx, r.pool).Exec(ctx,
		`UPDATE tasks SET created_by = NULL, updated_at = NOW() WHERE created_by = $1`, userID)
	return err
}

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var (
		description      *string
		status, priority string
		assignee         *string
		creator          *string
		due              *time.Time
	)
	if err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&description,
		&status,
		&priority,
		&assignee,
		&creator,
		&due,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	if description != nil {
		task.Description = *description
	}
	if assignee != nil {
		task.AssigneeID = *assignee
	}
	if creator != nil {
		task.CreatorID = *creator
	}
	task.DueDate = due
	return &task, nil
}
