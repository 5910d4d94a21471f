package memstore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Hesed2817/taskflow-app/domain"
	"github.com/Hesed2817/taskflow-app/pkg/hash"
	"github.com/Hesed2817/taskflow-app/repository"
)

// Users returns the in-memory UserRepository view of the store.
func (s *Store) Users() repository.UserRepository {
	return (*userRepo)(s)
}

type userRepo Store

func (r *userRepo) store() *Store { return (*Store)(r) }

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	defer r.store().lock(ctx)()
	user, ok := r.data.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer r.store().lock(ctx)()
	email = domain.NormalizeEmail(email)
	for _, user := range r.data.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepo) GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	defer r.store().lock(ctx)()
	for _, user := range r.data.users {
		if user.ResetTokenHash == "" {
			continue
		}
		if hash.TokensEqual(user.ResetTokenHash, tokenHash) && user.ResetTokenExpires != nil && user.ResetTokenExpires.After(now) {
			u := user
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	defer r.store().lock(ctx)()

	user.Email = domain.NormalizeEmail(user.Email)
	for _, existing := range r.data.users {
		if existing.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.data.users[user.ID] = *user
	r.store().touch(user.ID)
	return nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	defer r.store().lock(ctx)()

	if _, ok := r.data.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	user.Email = domain.NormalizeEmail(user.Email)
	for id, existing := range r.data.users {
		if id != user.ID && existing.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	user.UpdatedAt = time.Now()
	r.data.users[user.ID] = *user
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	defer r.store().lock(ctx)()
	if _, ok := r.data.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.data.users, id)
	return nil
}

func (r *userRepo) Search(ctx context.Context, q repository.UserSearch) ([]domain.User, error) {
	defer r.store().lock(ctx)()

	limit := q.Limit
	if limit <= 0 || limit > 10 {
		limit = 10
	}

	var out []domain.User
	for _, user := range r.data.users {
		if user.ID == q.ExcludeID {
			continue
		}
		if q.Email != "" && !strings.Contains(user.Email, strings.ToLower(q.Email)) {
			continue
		}
		if q.Username != "" && !strings.Contains(strings.ToLower(user.Username), strings.ToLower(q.Username)) {
			continue
		}
		out = append(out, user)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *userRepo) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int, error) {
	defer r.store().lock(ctx)()

	var purged int
	for id, user := range r.data.users {
		if user.ResetTokenExpires != nil && !user.ResetTokenExpires.After(now) {
			user.ClearResetToken()
			r.data.users[id] = user
			purged++
		}
	}
	return purged, nil
}
