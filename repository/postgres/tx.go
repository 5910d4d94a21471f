package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hesed2817/taskflow-app/domain"
	"github.com/Hesed2817/taskflow-app/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories can
// run against the pool or against the transaction carried in the context.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// txManager implements repository.TxManager on a pgx pool. The open
// transaction is stashed in the context so every repository call inside
// WithinTx reads and writes through the same snapshot.
type txManager struct {
	pool *pgxpool.Pool
}

// NewTxManager returns a Postgres-backed transaction manager.
func NewTxManager(pool *pgxpool.Pool) repository.TxManager {
	return &txManager{pool: pool}
}

func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		// Already inside a transaction; join it.
		return fn(ctx)
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return domain.TxFailed(err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback(ctx)
		return domain.TxFailed(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.TxFailed(err)
	}
	return nil
}

// resolve picks the transaction from ctx when present, the pool otherwise.
func resolve(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}
