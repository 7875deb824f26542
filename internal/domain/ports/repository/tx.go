package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager provides a thin abstraction to execute a function within
// a database transaction, passing the underlying transaction handle via `tx`.
//
// Keeping the handle opaque keeps use-case interfaces clean: repositories
// accept a `qx any` executor and detect a live transaction implementation-side
// (e.g. to run SELECT ... FOR UPDATE), while gracefully accepting nil for the
// non-transactional path. Every ledger mutation runs through WithTx with
// Serializable isolation so the per-uid read-modify-write is race free.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
