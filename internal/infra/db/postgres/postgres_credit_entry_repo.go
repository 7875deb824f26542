package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-credit-sync/internal/domain/model"
	"subscription-credit-sync/internal/domain/ports/repository"
)

var _ repository.CreditEntryRepository = (*CreditEntryRepo)(nil)

// CreditEntryRepo persists the append-only credit journal.
type CreditEntryRepo struct {
	pool *pgxpool.Pool
}

func NewCreditEntryRepo(pool *pgxpool.Pool) *CreditEntryRepo {
	return &CreditEntryRepo{pool: pool}
}

func (r *CreditEntryRepo) Append(ctx context.Context, tx repository.Tx, e *model.CreditEntry) error {
	const q = `
INSERT INTO credit_entries (id, uid, kind, gift_delta, paid_delta, ref_type, ref_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, q, e.ID, e.UID, string(e.Kind), e.GiftDelta, e.PaidDelta, e.RefType, e.RefID, e.CreatedAt); err != nil {
		return fmt.Errorf("append credit entry: %w", err)
	}
	return nil
}
