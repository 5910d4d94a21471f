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

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, reset_token_hash, reset_token_expires, created_at, updated_at`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := resolve(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := resolve(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, domain.NormalizeEmail(email))
	return scanUser(row)
}

func (r *userRepository) GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	row := resolve(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token_hash = $1 AND reset_token_expires > $2`,
		tokenHash, now)
	return scanUser(row)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = domain.NormalizeEmail(user.Email)

	const query = `
	INSERT INTO users (id, username, email, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at, updated_at
	`
	err := resolve(ctx, r.pool).QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE users
	SET username = $2,
		email = $3,
		password_hash = $4,
		reset_token_hash = $5,
		reset_token_expires = $6,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	err := resolve(ctx, r.pool).QueryRow(ctx, query,
		user.ID,
		user.Username,
		domain.NormalizeEmail(user.Email),
		user.PasswordHash,
		nullString(user.ResetTokenHash),
		nullTime(user.ResetTokenExpires),
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	tag, err := resolve(ctx, r.pool).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Search(ctx context.Context, q repository.UserSearch) ([]domain.User, error) {
	const query = `
	SELECT ` + userColumns + `
	FROM users
	WHERE ($1 = '' OR email ILIKE '%' || $1 || '%')
	  AND ($2 = '' OR username ILIKE '%' || $2 || '%')
	  AND id <> $3
	ORDER BY username
	LIMIT $4
	`
	rows, err := resolve(ctx, r.pool).Query(ctx, query,
		escapeLike(q.Email), escapeLike(q.Username), q.ExcludeID, clampLimit(q.Limit, 10))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *userRepository) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int, error) {
	const query = `
	UPDATE users
	SET reset_token_hash = NULL, reset_token_expires = NULL
	WHERE reset_token_expires IS NOT NULL AND reset_token_expires <= $1
	`
	tag, err := resolve(ctx, r.pool).Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var (
		tokenHash    *string
		tokenExpires *time.Time
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&tokenHash,
		&tokenExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if tokenHash != nil {
		user.ResetTokenHash = *tokenHash
	}
	user.ResetTokenExpires = tokenExpires
	return &user, nil
}
