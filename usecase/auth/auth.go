package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Hesed2817/taskflow-app/domain"
	"github.com/Hesed2817/taskflow-app/pkg/token"
	"github.com/Hesed2817/taskflow-app/repository"
)

// UseCase issues and revokes login sessions. Each session is keyed by the
// signed token's ID so a revoked token stops working before it expires.
type UseCase struct {
	sessions repository.SessionRepository
	issuer   *token.Issuer
	logger   *zap.Logger
}

func New(sessions repository.SessionRepository, issuer *token.Issuer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		sessions: sessions,
		issuer:   issuer,
		logger:   logger,
	}
}

// IssueToken signs an access token for the user and caches the backing session.
func (uc *UseCase) IssueToken(ctx context.Context, userID string) (string, *domain.Session, error) {
	signed, tokenID, expiresAt, err := uc.issuer.Issue(userID)
	if err != nil {
		return "", nil, err
	}

	session := &domain.Session{
		ID:        tokenID,
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return "", nil, err
	}
	return signed, session, nil
}

// ValidateToken checks the signature, expiry, and that the backing session
// has not been revoked, then returns the subject user ID.
func (uc *UseCase) ValidateToken(ctx context.Context, signed string) (string, error) {
	claims, err := uc.issuer.Parse(signed)
	if err != nil {
		return "", err
	}

	session, err := uc.sessions.Get(ctx, claims.ID)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeUnauthorized, "session revoked or expired", err)
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, claims.ID)
		return "", domain.NewError(domain.ErrCodeUnauthorized, "session expired")
	}
	return claims.UserID, nil
}

// RevokeToken deletes the session backing the token (logout).
func (uc *UseCase) RevokeToken(ctx context.Context, signed string) error {
	claims, err := uc.issuer.Parse(signed)
	if err != nil {
		return err
	}
	return uc.sessions.Delete(ctx, claims.ID)
}
