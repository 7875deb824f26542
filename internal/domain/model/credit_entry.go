package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type CreditEntryKind string

const (
	CreditEntryConsume   CreditEntryKind = "consume"
	CreditEntryGrant     CreditEntryKind = "grant"
	CreditEntryRefund    CreditEntryKind = "refund"
	CreditEntryGiftReset CreditEntryKind = "gift_reset"
	CreditEntryGiftClear CreditEntryKind = "gift_clear"
)

// CreditEntry is one journal row recorded alongside every balance mutation,
// in the same transaction. RefType/RefID carry the external reference that
// caused the mutation (usage type + usage id for consumes, product id +
// purchase id for grants). The journal is write-only from the core's point of
// view; only aggregate stats ever read it back.
type CreditEntry struct {
	ID        string // ulid, sortable by creation time
	UID       string
	Kind      CreditEntryKind
	GiftDelta int
	PaidDelta int
	RefType   string
	RefID     string
	CreatedAt time.Time
}

func NewCreditEntry(uid string, kind CreditEntryKind, giftDelta, paidDelta int, refType, refID string, now time.Time) *CreditEntry {
	return &CreditEntry{
		ID:        ulid.Make().String(),
		UID:       uid,
		Kind:      kind,
		GiftDelta: giftDelta,
		PaidDelta: paidDelta,
		RefType:   refType,
		RefID:     refID,
		CreatedAt: now,
	}
}
