// File: internal/usecase/lifecycle_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"subscription-credit-sync/internal/domain"
	"subscription-credit-sync/internal/domain/model"
	"subscription-credit-sync/internal/infra/logging"
	"subscription-credit-sync/internal/infra/metrics"
)

// Compile-time check
var _ LifecycleUseCase = (*lifecycleUC)(nil)

// LifecycleUseCase turns one provider change notification into ledger calls.
//
// Delivery is at-least-once, so ledger failures are logged and NOT retried
// here: a retry loop on top of redelivery would double-apply the non-idempotent
// grant path. Redelivered notifications with a stale `before` snapshot can
// still double-credit AddPaid; the source offers no purchase-level dedup
// handle, so this is recorded in the journal rather than resolved here.
type LifecycleUseCase interface {
	ProcessEntitlementUpdate(ctx context.Context, uid string, before, after model.EntitlementSnapshot) error
	ProcessPurchaseUpdate(ctx context.Context, uid string, before, after model.PurchaseHistorySnapshot) error
}

type lifecycleUC struct {
	ledger  CreditLedgerUseCase
	entDiff *EntitlementDiffEngine
	purDiff *PurchaseDiffEngine
	log     *zerolog.Logger
}

func NewLifecycleUseCase(ledger CreditLedgerUseCase, entDiff *EntitlementDiffEngine, purDiff *PurchaseDiffEngine, logger *zerolog.Logger) *lifecycleUC {
	return &lifecycleUC{
		ledger:  ledger,
		entDiff: entDiff,
		purDiff: purDiff,
		log:     logger,
	}
}

// ProcessEntitlementUpdate applies the fixed gift-bucket policy:
// any activation resets the gift grant (once, however many keys activated),
// any expiry clears it (once). When one update carries both, reset runs first
// and clear second, so an expiry overrides an activation and the gift bucket
// ends at zero. That precedence is deliberate and pinned by a regression test.
func (u *lifecycleUC) ProcessEntitlementUpdate(ctx context.Context, uid string, before, after model.EntitlementSnapshot) error {
	defer logging.TraceDuration(u.log, "LifecycleUC.ProcessEntitlementUpdate")()
	if uid == "" {
		return domain.ErrInvalidArgument
	}

	diff := u.entDiff.Compute(before, after, time.Now())
	if diff.Empty() {
		u.log.Debug().Str("uid", uid).Msg("entitlement update produced no events")
		return nil
	}
	metrics.IncLifecycleEvent("activated", len(diff.Activated))
	metrics.IncLifecycleEvent("expired", len(diff.Expired))
	u.log.Info().Str("uid", uid).
		Strs("activated", diff.Activated).Strs("expired", diff.Expired).
		Msg("entitlement lifecycle events")

	if len(diff.Activated) > 0 {
		if err := u.ledger.ResetGift(ctx, uid); err != nil {
			metrics.IncLedgerCallFailure("reset_gift")
			u.log.Error().Err(err).Str("uid", uid).Msg("reset gift failed; relying on redelivery")
		}
	}
	if len(diff.Expired) > 0 {
		if err := u.ledger.ClearGift(ctx, uid); err != nil {
			metrics.IncLedgerCallFailure("clear_gift")
			u.log.Error().Err(err).Str("uid", uid).Msg("clear gift failed; relying on redelivery")
		}
	}
	return nil
}

// ProcessPurchaseUpdate grants the fixed paid-credit amount for every product
// whose purchase history grew in this update.
func (u *lifecycleUC) ProcessPurchaseUpdate(ctx context.Context, uid string, before, after model.PurchaseHistorySnapshot) error {
	defer logging.TraceDuration(u.log, "LifecycleUC.ProcessPurchaseUpdate")()
	if uid == "" {
		return domain.ErrInvalidArgument
	}

	events := u.purDiff.Compute(before, after)
	if len(events) == 0 {
		u.log.Debug().Str("uid", uid).Msg("purchase update produced no events")
		return nil
	}
	metrics.IncLifecycleEvent("new_purchase", len(events))

	for _, ev := range events {
		if err := u.ledger.AddPaid(ctx, uid, model.NonSubscriptionPurchaseCredit, ev.ProductID, ev.PurchaseID); err != nil {
			metrics.IncLedgerCallFailure("add_paid")
			u.log.Error().Err(err).Str("uid", uid).
				Str("product_id", ev.ProductID).Str("purchase_id", ev.PurchaseID).
				Msg("paid credit grant failed; relying on redelivery")
		}
	}
	return nil
}
