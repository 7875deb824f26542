// File: internal/usecase/entitlement_diff.go
package usecase

import (
	"sort"
	"time"

	"subscription-credit-sync/internal/domain/model"
)

// EntitlementDiff holds the lifecycle events derived from one snapshot pair.
// The two sets are disjoint; ordering between keys carries no meaning (they
// are sorted only so output is stable for logs and tests).
type EntitlementDiff struct {
	Activated []string
	Expired   []string
}

func (d EntitlementDiff) Empty() bool {
	return len(d.Activated) == 0 && len(d.Expired) == 0
}

// EntitlementDiffEngine compares two entitlement snapshots for one user
// update. It is pure and deterministic given the snapshots and the evaluation
// instant; it holds no state and never touches storage.
type EntitlementDiffEngine struct{}

func NewEntitlementDiffEngine() *EntitlementDiffEngine {
	return &EntitlementDiffEngine{}
}

// Compute derives activation and expiry events. A key present only in after
// transitions from "absent = inactive"; a key removed from after while it was
// active counts as an expiry.
func (e *EntitlementDiffEngine) Compute(before, after model.EntitlementSnapshot, now time.Time) EntitlementDiff {
	var diff EntitlementDiff

	for key, rec := range after {
		wasActive := false
		if prev, ok := before[key]; ok {
			wasActive = prev.ActiveAt(now)
		}
		isNowActive := rec.ActiveAt(now)
		switch {
		case !wasActive && isNowActive:
			diff.Activated = append(diff.Activated, key)
		case wasActive && !isNowActive:
			diff.Expired = append(diff.Expired, key)
		}
	}

	for key, prev := range before {
		if _, ok := after[key]; ok {
			continue
		}
		if prev.ActiveAt(now) {
			diff.Expired = append(diff.Expired, key)
		}
	}

	sort.Strings(diff.Activated)
	sort.Strings(diff.Expired)
	return diff
}
