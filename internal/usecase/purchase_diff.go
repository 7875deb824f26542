// File: internal/usecase/purchase_diff.go
package usecase

import (
	"sort"

	"subscription-credit-sync/internal/domain/model"
)

// NewPurchase is a derived event for one product whose history grew.
type NewPurchase struct {
	ProductID  string
	PurchaseID string
}

// PurchaseDiffEngine compares two purchase-history snapshots. Histories are
// compared only by list length and last element: one event per product key
// per update, surfacing the last element's identifier even when the list grew
// by more than one (a known limitation of the comparison).
type PurchaseDiffEngine struct{}

func NewPurchaseDiffEngine() *PurchaseDiffEngine {
	return &PurchaseDiffEngine{}
}

func (e *PurchaseDiffEngine) Compute(before, after model.PurchaseHistorySnapshot) []NewPurchase {
	var events []NewPurchase
	for key, history := range after {
		if len(history) == 0 {
			continue
		}
		if len(history) <= len(before[key]) {
			continue
		}
		last := history[len(history)-1]
		events = append(events, NewPurchase{ProductID: key, PurchaseID: last.Identifier()})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ProductID < events[j].ProductID })
	return events
}
