package repository

import (
	"context"
	"time"

	"github.com/Hesed2817/taskflow-app/domain"
)

// UserSearch bounds the member-lookup query exposed to authenticated users.
type UserSearch struct {
	Email     string
	Username  string
	ExcludeID string
	Limit     int
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByResetTokenHash only returns users whose token has not expired at now.
	GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q UserSearch) ([]domain.User, error)
	// PurgeExpiredResetTokens clears token fields whose expiry has passed and
	// returns how many rows were touched.
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int, error)
}
