package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/Hesed2817/taskflow-app/internal/infrastructure/outbox"
)

// Mailer is the delivery port the outbox drains through. An SMTP adapter
// plugs in here in production.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogMailer writes messages to the log instead of sending them. Used in
// development and tests.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, recipient, subject, body string) error {
	m.logger.Info("mail delivered (log sink)",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)))
	return nil
}

// Notifier enqueues reset emails for asynchronous delivery. The identity
// handlers depend on this rather than on the outbox directly.
type Notifier struct {
	store *outbox.Store
}

func NewNotifier(store *outbox.Store) *Notifier {
	return &Notifier{store: store}
}

// SendPasswordReset queues the reset email containing the raw token.
func (n *Notifier) SendPasswordReset(_ context.Context, recipient, resetURL string) error {
	body := "You are receiving this email because a password reset was requested " +
		"for your account. Follow the link below within 10 minutes to choose a new password:\n\n" + resetURL
	return n.store.Enqueue(outbox.Message{
		Recipient: recipient,
		Subject:   "Password reset token",
		Body:      body,
	})
}
