// Package memstore provides an in-memory implementation of the repository
// ports with snapshot-based transactions. It backs the use case tests, where
// the atomicity of cascades and ownership transfers must be observable
// without a running Postgres.
package memstore

import (
	"context"
	"sync"

	"github.com/Hesed2817/taskflow-app/domain"
)

type state struct {
	users    map[string]domain.User
	projects map[string]domain.Project
	tasks    map[string]domain.Task
	seq      map[string]int64 // insertion order, newest-first sorting
	nextSeq  int64
}

func newState() *state {
	return &state{
		users:    make(map[string]domain.User),
		projects: make(map[string]domain.Project),
		tasks:    make(map[string]domain.Task),
		seq:      make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := newState()
	c.nextSeq = s.nextSeq
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.projects {
		v.Members = append([]string(nil), v.Members...)
		c.projects[k] = v
	}
	for k, v := range s.tasks {
		c.tasks[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	return c
}

// Store holds all collections behind a single mutex. Transactions take the
// lock for their whole lifetime, so a transaction always sees a consistent
// snapshot and rolls back to it on failure.
type Store struct {
	mu   sync.Mutex
	data *state

	// FailTaskPurge, when set, forces DeleteByProject to fail. Tests use it
	// to prove that cascades abort without partial effects.
	FailTaskPurge error
}

func New() *Store {
	return &Store{data: newState()}
}

type txKey struct{}

// WithinTx implements repository.TxManager with copy-on-begin semantics.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.data = snapshot
		return domain.TxFailed(err)
	}
	return nil
}

// lock is a no-op inside a transaction, which already holds the mutex.
func (s *Store) lock(ctx context.Context) func() {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) touch(id string) {
	s.data.nextSeq++
	s.data.seq[id] = s.data.nextSeq
}
