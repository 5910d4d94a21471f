package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Hesed2817/taskflow-app/repository"
)

// TokenJanitor periodically clears expired password-reset tokens so stale
// digests never linger in the user store.
type TokenJanitor struct {
	users    repository.UserRepository
	interval time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewTokenJanitor(users repository.UserRepository, interval time.Duration, logger *zap.Logger) *TokenJanitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tj := &TokenJanitor{
		users:    users,
		interval: interval,
		logger:   logger,
		cron:     cron.New(),
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, _ = tj.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if err := tj.Sweep(ctx); err != nil {
			tj.logger.Error("reset-token sweep failed", zap.Error(err))
		}
	})

	return tj
}

func (tj *TokenJanitor) Start() {
	if tj == nil || tj.cron == nil {
		return
	}
	tj.cron.Start()
	tj.logger.Info("token janitor started")
}

func (tj *TokenJanitor) Stop(ctx context.Context) {
	if tj == nil || tj.cron == nil {
		return
	}
	stopCtx := tj.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	tj.logger.Info("token janitor stopped")
}

// Sweep clears every reset token whose expiry has passed.
func (tj *TokenJanitor) Sweep(ctx context.Context) error {
	purged, err := tj.users.PurgeExpiredResetTokens(ctx, time.Now())
	if err != nil {
		return err
	}
	if purged > 0 {
		tj.logger.Info("expired reset tokens purged", zap.Int("count", purged))
	}
	return nil
}
