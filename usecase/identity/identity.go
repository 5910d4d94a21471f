package identity

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Hesed2817/taskflow-app/domain"
	"github.com/Hesed2817/taskflow-app/pkg/hash"
	"github.com/Hesed2817/taskflow-app/repository"
	"github.com/Hesed2817/taskflow-app/usecase/cascade"
)

const (
	minPasswordLen = 6
	resetTokenTTL  = 10 * time.Minute
)

type UseCase struct {
	users   repository.UserRepository
	hasher  hash.PasswordHasher
	cascade *cascade.Coordinator
	logger  *zap.Logger
}

func New(users repository.UserRepository, hasher hash.PasswordHasher, casc *cascade.Coordinator, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:   users,
		hasher:  hasher,
		cascade: casc,
		logger:  logger,
	}
}

// Register creates a user with an irreversibly hashed credential. The email
// must be unique case-insensitively.
func (uc *UseCase) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "please add a username")
	}
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "please add an email")
	}
	if len(password) < minPasswordLen {
		return nil, domain.ErrWeakPassword
	}

	digest, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: digest,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Authenticate verifies credentials. Unknown email and hash mismatch yield
// the identical error to avoid account enumeration.
func (uc *UseCase) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !uc.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword re-hashes after verifying the current credential.
func (uc *UseCase) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !uc.hasher.Verify(current, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLen {
		return domain.ErrWeakPassword
	}

	digest, err := uc.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = digest
	return uc.users.Update(ctx, user)
}

// IssueResetToken stores the one-way hash of a fresh token with a 10-minute
// expiry and returns the raw token for out-of-band delivery. The caller
// decides whether to reveal account existence.
func (uc *UseCase) IssueResetToken(ctx context.Context, email string) (raw string, expiresAt time.Time, err error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, err
	}

	raw, digest, err := hash.NewResetToken()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt = time.Now().Add(resetTokenTTL)
	user.ResetTokenHash = digest
	user.ResetTokenExpires = &expiresAt
	if err := uc.users.Update(ctx, user); err != nil {
		return "", time.Time{}, err
	}
	return raw, expiresAt, nil
}

// ConsumeResetToken trades a valid, unexpired token for a new password and
// clears the token fields so it cannot be used twice.
func (uc *UseCase) ConsumeResetToken(ctx context.Context, rawToken, newPassword string) (*domain.User, error) {
	user, err := uc.users.GetByResetTokenHash(ctx, hash.DigestToken(rawToken), time.Now())
	if err != nil {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	if len(newPassword) < minPasswordLen {
		return nil, domain.ErrWeakPassword
	}

	digest, err := uc.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = digest
	user.ClearResetToken()
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("password reset", zap.String("user_id", user.ID))
	return user, nil
}

// DeleteAccount verifies the confirming password and hands the user to the
// cascade coordinator.
func (uc *UseCase) DeleteAccount(ctx context.Context, userID, confirmingPassword string) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !uc.hasher.Verify(confirmingPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	return uc.cascade.DeleteUser(ctx, userID)
}

// GetProfile returns the public view of a user.
func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// UpdateProfile changes the display name.
func (uc *UseCase) UpdateProfile(ctx context.Context, userID, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "please add a username")
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Username = username
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SearchUsers finds other users by email or username substring, excluding
// the caller, capped at 10 results.
func (uc *UseCase) SearchUsers(ctx context.Context, actorID, email, username string) ([]domain.User, error) {
	if email == "" && username == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "please provide an email or username to search")
	}
	return uc.users.Search(ctx, repository.UserSearch{
		Email:     email,
		Username:  username,
		ExcludeID: actorID,
		Limit:     10,
	})
}
