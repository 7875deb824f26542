package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-credit-sync/internal/domain"
	"subscription-credit-sync/internal/domain/model"
	"subscription-credit-sync/internal/domain/ports/repository"
)

var _ repository.CreditBalanceRepository = (*BalanceRepo)(nil)

type BalanceRepo struct {
	pool *pgxpool.Pool
}

func NewBalanceRepo(pool *pgxpool.Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

func (r *BalanceRepo) Save(ctx context.Context, tx repository.Tx, b *model.CreditBalance) error {
	const q = `
INSERT INTO credit_balances (uid, gift_credit, paid_credit, last_gift_reset, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (uid) DO UPDATE SET
  gift_credit=$2, paid_credit=$3, last_gift_reset=$4, updated_at=$5;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, q, b.UID, b.GiftCredit, b.PaidCredit, b.LastGiftReset, b.UpdatedAt); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	return nil
}

func (r *BalanceRepo) FindByUID(ctx context.Context, tx repository.Tx, uid string) (*model.CreditBalance, error) {
	q := `SELECT uid, gift_credit, paid_credit, last_gift_reset, updated_at FROM credit_balances WHERE uid=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}

	var b model.CreditBalance
	if err := ex.QueryRow(ctx, q, uid).Scan(&b.UID, &b.GiftCredit, &b.PaidCredit, &b.LastGiftReset, &b.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find balance: %w", err)
	}
	return &b, nil
}

func (r *BalanceRepo) CountBalances(ctx context.Context, tx repository.Tx) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM credit_balances;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count balances: %w", err)
	}
	return n, nil
}

func (r *BalanceRepo) SumOutstanding(ctx context.Context, tx repository.Tx) (int64, int64, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, 0, err
	}
	var gift, paid int64
	const q = `SELECT COALESCE(SUM(gift_credit),0), COALESCE(SUM(paid_credit),0) FROM credit_balances;`
	if err := ex.QueryRow(ctx, q).Scan(&gift, &paid); err != nil {
		return 0, 0, fmt.Errorf("sum outstanding: %w", err)
	}
	return gift, paid, nil
}
