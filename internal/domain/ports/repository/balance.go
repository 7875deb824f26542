package repository

import (
	"context"

	"subscription-credit-sync/internal/domain/model"
)

// CreditBalanceRepository is the port for the per-user balance store.
type CreditBalanceRepository interface {
	// Save creates or updates the balance row.
	Save(ctx context.Context, tx Tx, b *model.CreditBalance) error
	// FindByUID returns the balance or domain.ErrNotFound. Implementations
	// lock the row for the transaction's duration when tx is a live handle.
	FindByUID(ctx context.Context, tx Tx, uid string) (*model.CreditBalance, error)

	// --- Statistics read-only methods ---
	CountBalances(ctx context.Context, tx Tx) (int, error)
	// SumOutstanding returns the totals currently held across all balances,
	// split by bucket.
	SumOutstanding(ctx context.Context, tx Tx) (gift int64, paid int64, err error)
}
