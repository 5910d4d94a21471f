// Package outbox persists password-reset emails in BoltDB until they are
// delivered. The core only produces tokens; delivery always goes through
// this durable queue so a mail-provider outage never loses a message.
package outbox

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Message is a pending out-of-band notification.
type Message struct {
	ID         string    `json:"id"`
	Recipient  string    `json:"recipient"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`

	bucketKey []byte
}

func (m *Message) normalize() {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.EnqueuedAt.IsZero() {
		m.EnqueuedAt = time.Now()
	}
}

// Store wraps BoltDB to persist outbox messages.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	bucket := []byte("outbox")
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, bucket: bucket}, nil
}

// Enqueue stores a message in FIFO order.
func (s *Store) Enqueue(msg Message) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	msg.normalize()
	msg.bucketKey = []byte(fmt.Sprintf("%020d_%s", msg.EnqueuedAt.UnixNano(), msg.ID))

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(msg.bucketKey, payload)
	})
}

// GetBatch returns up to limit messages without removing them.
func (s *Store) GetBatch(limit int) ([]Message, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var messages []Message
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(messages) < limit; k, v = c.Next() {
			var msg Message
			if err := json.Unmarshal(v, &msg); err != nil {
				continue
			}
			msg.bucketKey = append([]byte(nil), k...)
			messages = append(messages, msg)
		}
		return nil
	})
	return messages, err
}

// Remove deletes the provided message from the outbox.
func (s *Store) Remove(msg Message) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(msg.bucketKey)
	})
}

// Requeue re-inserts a message after bumping its attempt count.
func (s *Store) Requeue(msg Message) error {
	if err := s.Remove(msg); err != nil {
		return err
	}
	msg.bucketKey = nil
	msg.EnqueuedAt = time.Now()
	return s.Enqueue(msg)
}

// Size returns the number of pending messages.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
