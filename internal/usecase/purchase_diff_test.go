//go:build !integration

package usecase_test

import (
	"reflect"
	"testing"

	"subscription-credit-sync/internal/domain/model"
	"subscription-credit-sync/internal/usecase"
)

func TestPurchaseDiffEngine_Compute(t *testing.T) {
	engine := usecase.NewPurchaseDiffEngine()

	x := model.PurchaseRecord{ID: "p-x"}
	y := model.PurchaseRecord{ID: "p-y"}
	z := model.PurchaseRecord{TransactionID: "tx-z"}

	cases := []struct {
		name          string
		before, after model.PurchaseHistorySnapshot
		want          []usecase.NewPurchase
	}{
		{
			name:   "grown history emits the last element's id",
			before: model.PurchaseHistorySnapshot{"coins": {x}},
			after:  model.PurchaseHistorySnapshot{"coins": {x, y}},
			want:   []usecase.NewPurchase{{ProductID: "coins", PurchaseID: "p-y"}},
		},
		{
			name:   "identical snapshots emit nothing",
			before: model.PurchaseHistorySnapshot{"coins": {x}},
			after:  model.PurchaseHistorySnapshot{"coins": {x}},
		},
		{
			name:  "first purchase for an unseen product",
			after: model.PurchaseHistorySnapshot{"coins": {x}},
			want:  []usecase.NewPurchase{{ProductID: "coins", PurchaseID: "p-x"}},
		},
		{
			name:   "growth by more than one still yields a single event",
			before: model.PurchaseHistorySnapshot{"coins": {}},
			after:  model.PurchaseHistorySnapshot{"coins": {x, y}},
			want:   []usecase.NewPurchase{{ProductID: "coins", PurchaseID: "p-y"}},
		},
		{
			name:   "transaction id fallback when the primary id is missing",
			before: model.PurchaseHistorySnapshot{},
			after:  model.PurchaseHistorySnapshot{"gems": {z}},
			want:   []usecase.NewPurchase{{ProductID: "gems", PurchaseID: "tx-z"}},
		},
		{
			name:   "shrunk history emits nothing",
			before: model.PurchaseHistorySnapshot{"coins": {x, y}},
			after:  model.PurchaseHistorySnapshot{"coins": {x}},
		},
		{
			name:   "multiple products sorted by product id",
			before: model.PurchaseHistorySnapshot{"coins": {x}},
			after:  model.PurchaseHistorySnapshot{"gems": {z}, "coins": {x, y}},
			want: []usecase.NewPurchase{
				{ProductID: "coins", PurchaseID: "p-y"},
				{ProductID: "gems", PurchaseID: "tx-z"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := engine.Compute(tc.before, tc.after)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Compute = %+v, want %+v", got, tc.want)
			}
		})
	}
}
