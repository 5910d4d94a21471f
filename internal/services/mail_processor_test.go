package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Hesed2817/taskflow-app/internal/infrastructure/outbox"
)

type fakeMailer struct {
	sent []string
	fail error
}

func (m *fakeMailer) Send(_ context.Context, recipient, _, _ string) error {
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, recipient)
	return nil
}

func openTestOutbox(t *testing.T) *outbox.Store {
	t.Helper()
	store, err := outbox.Open(filepath.Join(t.TempDir(), "outbox.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDrainDeliversAndPurges(t *testing.T) {
	t.Parallel()

	store := openTestOutbox(t)
	mailer := &fakeMailer{}
	mp := NewMailProcessor(store, mailer, nil, ProcessorConfig{
		Interval:   time.Minute,
		BatchSize:  10,
		MaxRetries: 3,
	})

	notifier := NewNotifier(store)
	ctx := context.Background()
	if err := notifier.SendPasswordReset(ctx, "alice@example.com", "https://app/reset?token=abc"); err != nil {
		t.Fatalf("SendPasswordReset: %v", err)
	}

	if err := mp.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "alice@example.com" {
		t.Errorf("sent = %v, want one mail to alice", mailer.sent)
	}
	if mp.Size() != 0 {
		t.Errorf("Size() = %d, want drained outbox", mp.Size())
	}
}

func TestDrainRetriesThenDrops(t *testing.T) {
	t.Parallel()

	store := openTestOutbox(t)
	mailer := &fakeMailer{fail: errors.New("smtp down")}
	mp := NewMailProcessor(store, mailer, nil, ProcessorConfig{
		Interval:   time.Minute,
		BatchSize:  10,
		MaxRetries: 2,
	})

	ctx := context.Background()
	if err := store.Enqueue(outbox.Message{Recipient: "bob@example.com", Subject: "s", Body: "b"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// First drain fails and requeues with one attempt recorded.
	if err := mp.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if mp.Size() != 1 {
		t.Fatalf("Size() = %d, want requeued message", mp.Size())
	}

	// Second failure exhausts the retry budget and drops the message.
	if err := mp.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if mp.Size() != 0 {
		t.Errorf("Size() = %d, want dropped message", mp.Size())
	}

	// Recovery: new messages still flow once delivery works again.
	mailer.fail = nil
	if err := store.Enqueue(outbox.Message{Recipient: "bob@example.com", Subject: "s", Body: "b"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := mp.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Errorf("sent = %v, want one delivery after recovery", mailer.sent)
	}
}
