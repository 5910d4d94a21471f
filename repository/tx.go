package repository

import "context"

// TxManager runs fn inside a single store transaction. Every repository call
// made with the context passed to fn is transaction-scoped: reads observe a
// consistent snapshot and writes are applied atomically on commit. Any error
// from fn aborts the transaction with a full rollback.
//
// The store's transaction isolation is the sole concurrency boundary; no
// in-process locks are taken and no automatic retry is performed.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
