// File: internal/usecase/credit_ledger_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"subscription-credit-sync/internal/domain"
	"subscription-credit-sync/internal/domain/model"
	"subscription-credit-sync/internal/domain/ports/repository"
	"subscription-credit-sync/internal/infra/logging"
	"subscription-credit-sync/internal/infra/metrics"
)

// Compile-time check
var _ CreditLedgerUseCase = (*creditLedgerUC)(nil)

// ConsumeResult reports how a debit was split across the two buckets.
type ConsumeResult struct {
	UsedGift int
	UsedPaid int
}

// CreditLedgerUseCase exposes the balance mutations. Every operation runs as
// one serializable transaction over the balance store; calls for the same uid
// are linearized by the store, calls for different uids run concurrently.
type CreditLedgerUseCase interface {
	// GetOrCreate returns the user's balance, creating a zeroed one on first
	// access. Existing balances are read outside any transaction so the cache
	// decorator can serve them; only the create path opens a transaction. It
	// only fails on storage errors.
	GetOrCreate(ctx context.Context, uid string) (*model.CreditBalance, error)
	// Consume debits amount, gift bucket first. Fails with
	// domain.ErrInsufficientCredit (and no mutation) when the total cannot
	// cover the amount. usageType/usageID identify the downstream use being
	// paid for and end up in the journal.
	Consume(ctx context.Context, uid string, amount int, usageType, usageID string) (*ConsumeResult, error)
	// AddPaid increments the paid bucket, creating the balance if absent.
	// Additive: replays of the same purchase event grant again.
	AddPaid(ctx context.Context, uid string, amount int, productID, purchaseID string) error
	// ResetGift sets the gift bucket to model.MonthlyGiftCredit. Idempotent.
	ResetGift(ctx context.Context, uid string) error
	// ClearGift zeroes the gift bucket. Paid bucket untouched.
	ClearGift(ctx context.Context, uid string) error
	// Refund subtracts amount from the paid bucket, clamped at zero; the
	// excess is discarded. Fails with domain.ErrNotFound when the user has no
	// balance record.
	Refund(ctx context.Context, uid string, amount int) error
}

type creditLedgerUC struct {
	balances repository.CreditBalanceRepository
	journal  repository.CreditEntryRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewCreditLedgerUseCase(
	balances repository.CreditBalanceRepository,
	journal repository.CreditEntryRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *creditLedgerUC {
	return &creditLedgerUC{
		balances: balances,
		journal:  journal,
		tm:       tm,
		log:      logger,
	}
}

// serializableTx is used for every ledger mutation so the read-modify-write
// on a single balance row cannot interleave with a concurrent writer.
var serializableTx = pgx.TxOptions{IsoLevel: pgx.Serializable}

// loadOrCreate fetches the balance inside the current transaction, creating a
// zeroed record on first access.
func (u *creditLedgerUC) loadOrCreate(ctx context.Context, tx repository.Tx, uid string) (*model.CreditBalance, error) {
	bal, err := u.balances.FindByUID(ctx, tx, uid)
	if errors.Is(err, domain.ErrNotFound) {
		return model.NewCreditBalance(uid), nil
	}
	if err != nil {
		return nil, err
	}
	return bal, nil
}

func (u *creditLedgerUC) GetOrCreate(ctx context.Context, uid string) (*model.CreditBalance, error) {
	defer logging.TraceDuration(u.log, "CreditLedgerUC.GetOrCreate")()
	if uid == "" {
		return nil, domain.ErrInvalidArgument
	}

	// Fast path: a plain read, eligible for the cache.
	bal, err := u.balances.FindByUID(ctx, repository.NoTX, uid)
	if err == nil {
		return bal, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	var out *model.CreditBalance
	err = u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
		// Re-check under the row lock; a concurrent caller may have created it.
		bal, err := u.balances.FindByUID(ctx, tx, uid)
		if errors.Is(err, domain.ErrNotFound) {
			bal = model.NewCreditBalance(uid)
			if err := u.balances.Save(ctx, tx, bal); err != nil {
				return err
			}
			out = bal
			return nil
		}
		if err != nil {
			return err
		}
		out = bal
		return nil
	})
	return out, err
}

func (u *creditLedgerUC) Consume(ctx context.Context, uid string, amount int, usageType, usageID string) (*ConsumeResult, error) {
	defer logging.TraceDuration(u.log, "CreditLedgerUC.Consume")()
	if uid == "" || amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	var res ConsumeResult
	err := u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
		bal, err := u.loadOrCreate(ctx, tx, uid)
		if err != nil {
			return err
		}
		now := time.Now()
		usedGift, usedPaid, err := bal.Debit(amount, now)
		if err != nil {
			return err
		}
		if err := u.balances.Save(ctx, tx, bal); err != nil {
			return err
		}
		entry := model.NewCreditEntry(uid, model.CreditEntryConsume, -usedGift, -usedPaid, usageType, usageID, now)
		if err := u.journal.Append(ctx, tx, entry); err != nil {
			return err
		}
		res = ConsumeResult{UsedGift: usedGift, UsedPaid: usedPaid}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientCredit) {
			metrics.IncInsufficientCredit()
		}
		return nil, err
	}

	metrics.IncConsumed(res.UsedGift, res.UsedPaid)
	u.log.Debug().Str("uid", uid).Int("amount", amount).
		Int("used_gift", res.UsedGift).Int("used_paid", res.UsedPaid).
		Str("usage_type", usageType).Msg("credits consumed")
	return &res, nil
}

func (u *creditLedgerUC) AddPaid(ctx context.Context, uid string, amount int, productID, purchaseID string) error {
	defer logging.TraceDuration(u.log, "CreditLedgerUC.AddPaid")()
	if uid == "" || amount <= 0 {
		return domain.ErrInvalidArgument
	}

	err := u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
		bal, err := u.loadOrCreate(ctx, tx, uid)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := bal.Credit(amount, now); err != nil {
			return err
		}
		if err := u.balances.Save(ctx, tx, bal); err != nil {
			return err
		}
		entry := model.NewCreditEntry(uid, model.CreditEntryGrant, 0, amount, productID, purchaseID, now)
		return u.journal.Append(ctx, tx, entry)
	})
	if err != nil {
		return err
	}

	metrics.IncGranted(amount)
	u.log.Info().Str("uid", uid).Int("amount", amount).
		Str("product_id", productID).Str("purchase_id", purchaseID).
		Msg("paid credits granted")
	return nil
}

func (u *creditLedgerUC) ResetGift(ctx context.Context, uid string) error {
	defer logging.TraceDuration(u.log, "CreditLedgerUC.ResetGift")()
	if uid == "" {
		return domain.ErrInvalidArgument
	}

	err := u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
		bal, err := u.loadOrCreate(ctx, tx, uid)
		if err != nil {
			return err
		}
		now := time.Now()
		prior := bal.GiftCredit
		bal.ResetGift(now)
		if err := u.balances.Save(ctx, tx, bal); err != nil {
			return err
		}
		entry := model.NewCreditEntry(uid, model.CreditEntryGiftReset, bal.GiftCredit-prior, 0, "", "", now)
		return u.journal.Append(ctx, tx, entry)
	})
	if err != nil {
		return err
	}

	metrics.IncGiftReset()
	u.log.Info().Str("uid", uid).Msg("gift credits reset")
	return nil
}

func (u *creditLedgerUC) ClearGift(ctx context.Context, uid string) error {
	defer logging.TraceDuration(u.log, "CreditLedgerUC.ClearGift")()
	if uid == "" {
		return domain.ErrInvalidArgument
	}

	err := u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
		bal, err := u.loadOrCreate(ctx, tx, uid)
		if err != nil {
			return err
		}
		now := time.Now()
		prior := bal.GiftCredit
		bal.ClearGift(now)
		if err := u.balances.Save(ctx, tx, bal); err != nil {
			return err
		}
		entry := model.NewCreditEntry(uid, model.CreditEntryGiftClear, -prior, 0, "", "", now)
		return u.journal.Append(ctx, tx, entry)
	})
	if err != nil {
		return err
	}

	metrics.IncGiftClear()
	u.log.Info().Str("uid", uid).Msg("gift credits cleared")
	return nil
}

func (u *creditLedgerUC) Refund(ctx context.Context, uid string, amount int) error {
	defer logging.TraceDuration(u.log, "CreditLedgerUC.Refund")()
	if uid == "" || amount <= 0 {
		return domain.ErrInvalidArgument
	}

	var refunded int
	err := u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
		// No auto-create here: refunding a user that never had a balance is
		// a caller bug and surfaces as ErrNotFound.
		bal, err := u.balances.FindByUID(ctx, tx, uid)
		if err != nil {
			return err
		}
		now := time.Now()
		refunded = bal.RefundPaid(amount, now)
		if err := u.balances.Save(ctx, tx, bal); err != nil {
			return err
		}
		entry := model.NewCreditEntry(uid, model.CreditEntryRefund, 0, -refunded, "", "", now)
		return u.journal.Append(ctx, tx, entry)
	})
	if err != nil {
		return err
	}

	metrics.IncRefunded(refunded)
	if refunded < amount {
		// Lossy by contract: the paid bucket clamps at zero and the excess
		// is discarded rather than carried as debt.
		u.log.Warn().Str("uid", uid).Int("requested", amount).Int("refunded", refunded).
			Msg("refund clamped at zero paid balance")
	}
	return nil
}
