package model

import (
	"strconv"
	"time"
)

// EntitlementRecord mirrors one product entitlement as reported by the
// subscription provider. Fields arrive loosely typed: timestamps are raw
// strings in whatever shape the provider emits, and the explicit active flag
// is optional. Activity is always derived through ActiveAt, never stored.
type EntitlementRecord struct {
	ProductID    string `json:"product_id,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
	PurchaseDate string `json:"purchase_date,omitempty"`
}

// EntitlementSnapshot maps product key -> entitlement record at one instant.
// The system only ever sees (before, after) pairs of these for a single user
// update and never persists them.
type EntitlementSnapshot map[string]EntitlementRecord

// ActiveAt reports whether the entitlement is active at the given instant.
// An explicit IsActive flag wins; otherwise the record is active iff its
// expiry parses and lies strictly after now. Absent or malformed expiries are
// inactive. The predicate is total: it never fails on bad input.
func (r EntitlementRecord) ActiveAt(now time.Time) bool {
	if r.IsActive != nil {
		return *r.IsActive
	}
	exp, ok := ParseProviderTime(r.ExpiresAt)
	if !ok {
		return false
	}
	return exp.After(now)
}

// ParseProviderTime parses the timestamp shapes the provider is known to emit:
// RFC3339(Nano) strings and unix epoch milliseconds. Anything else is
// rejected with ok=false rather than an error, per the malformed-entry rule.
func ParseProviderTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}
