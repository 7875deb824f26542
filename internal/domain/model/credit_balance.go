package model

import (
	"time"

	"subscription-credit-sync/internal/domain"
)

// Credit grant amounts. These mirror the provider-side product configuration
// and are fixed; changing them silently would desynchronize granted balances.
const (
	// MonthlyGiftCredit is the gift-bucket value set on every subscription activation.
	MonthlyGiftCredit = 10
	// NonSubscriptionPurchaseCredit is the paid-bucket grant per one-off purchase.
	NonSubscriptionPurchaseCredit = 10
	// UseCreditsAmount is the fixed per-use debit callers request.
	UseCreditsAmount = 5
)

// CreditBalance is the per-user two-bucket credit record. It is created lazily
// on first access and never deleted. Both buckets are non-negative at all times;
// the usable total is GiftCredit+PaidCredit.
type CreditBalance struct {
	UID           string
	GiftCredit    int
	PaidCredit    int
	LastGiftReset *time.Time
	UpdatedAt     time.Time
}

// NewCreditBalance returns a fresh zeroed balance for uid.
func NewCreditBalance(uid string) *CreditBalance {
	return &CreditBalance{UID: uid, UpdatedAt: time.Now()}
}

// Total returns the usable credit across both buckets.
func (b *CreditBalance) Total() int { return b.GiftCredit + b.PaidCredit }

// Debit consumes amount from the balance, draining the gift bucket first and
// covering the remainder from the paid bucket. The gift-first ordering is a
// contract with callers, not an implementation detail.
func (b *CreditBalance) Debit(amount int, now time.Time) (usedGift, usedPaid int, err error) {
	if amount <= 0 {
		return 0, 0, domain.ErrInvalidArgument
	}
	if b.Total() < amount {
		return 0, 0, domain.ErrInsufficientCredit
	}
	usedGift = amount
	if b.GiftCredit < amount {
		usedGift = b.GiftCredit
	}
	usedPaid = amount - usedGift
	b.GiftCredit -= usedGift
	b.PaidCredit -= usedPaid
	b.UpdatedAt = now
	return usedGift, usedPaid, nil
}

// Credit adds amount to the paid bucket. There is no upper bound.
func (b *CreditBalance) Credit(amount int, now time.Time) error {
	if amount <= 0 {
		return domain.ErrInvalidArgument
	}
	b.PaidCredit += amount
	b.UpdatedAt = now
	return nil
}

// ResetGift sets the gift bucket to exactly MonthlyGiftCredit. Idempotent:
// repeated calls yield the same state, never an accumulation.
func (b *CreditBalance) ResetGift(now time.Time) {
	b.GiftCredit = MonthlyGiftCredit
	b.LastGiftReset = &now
	b.UpdatedAt = now
}

// ClearGift zeroes the gift bucket. The paid bucket is untouched.
func (b *CreditBalance) ClearGift(now time.Time) {
	b.GiftCredit = 0
	b.UpdatedAt = now
}

// RefundPaid decreases the paid bucket by amount, clamped at zero. The
// returned value is the amount actually subtracted; any excess over the
// current paid balance is discarded. The gift bucket is never touched.
func (b *CreditBalance) RefundPaid(amount int, now time.Time) int {
	refunded := amount
	if b.PaidCredit < amount {
		refunded = b.PaidCredit
	}
	b.PaidCredit -= refunded
	b.UpdatedAt = now
	return refunded
}
