package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Hesed2817/taskflow-app/internal/infrastructure/outbox"
)

// ProcessorConfig controls how frequently the outbox is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// MailProcessor drains the outbox through the Mailer on a cron schedule.
type MailProcessor struct {
	store  *outbox.Store
	mailer Mailer
	logger *zap.Logger
	cron   *cron.Cron
	cfg    ProcessorConfig
}

func NewMailProcessor(store *outbox.Store, mailer Mailer, logger *zap.Logger, cfg ProcessorConfig) *MailProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mp := &MailProcessor{
		store:  store,
		mailer: mailer,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = mp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := mp.Drain(ctx); err != nil {
			mp.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return mp
}

// Start launches the cron scheduler.
func (mp *MailProcessor) Start() {
	if mp == nil || mp.cron == nil {
		return
	}
	mp.cron.Start()
	mp.logger.Info("mail processor started")
}

// Stop gracefully stops the scheduler.
func (mp *MailProcessor) Stop(ctx context.Context) {
	if mp == nil || mp.cron == nil {
		return
	}
	stopCtx := mp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	mp.logger.Info("mail processor stopped")
}

// Drain sends pending messages synchronously, dropping any that exhaust
// their retry budget.
func (mp *MailProcessor) Drain(ctx context.Context) error {
	messages, err := mp.store.GetBatch(mp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		if err := mp.mailer.Send(ctx, msg.Recipient, msg.Subject, msg.Body); err != nil {
			mp.logger.Error("failed to deliver mail",
				zap.String("message_id", msg.ID),
				zap.Error(err))

			msg.Attempts++
			if msg.Attempts >= mp.cfg.MaxRetries {
				mp.logger.Warn("dropping mail (max retries reached)", zap.String("message_id", msg.ID))
				_ = mp.store.Remove(msg)
				continue
			}
			if err := mp.store.Requeue(msg); err != nil {
				mp.logger.Error("failed to requeue mail", zap.Error(err))
			}
			continue
		}

		if err := mp.store.Remove(msg); err != nil {
			mp.logger.Warn("failed to purge delivered mail", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of pending messages.
func (mp *MailProcessor) Size() int {
	if mp == nil || mp.store == nil {
		return 0
	}
	size, err := mp.store.Size()
	if err != nil {
		return 0
	}
	return size
}
