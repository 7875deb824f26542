package model

// PurchaseRecord is one purchase event inside a per-product history list.
// Providers disagree on which identifier field they fill, so Identifier()
// resolves the usable one.
type PurchaseRecord struct {
	ID            string `json:"id,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	PurchaseDate  string `json:"purchase_date,omitempty"`
}

// Identifier returns the primary id when present, otherwise the transaction
// id. May be empty if the provider sent neither.
func (p PurchaseRecord) Identifier() string {
	if p.ID != "" {
		return p.ID
	}
	return p.TransactionID
}

// PurchaseHistorySnapshot maps product key -> ordered purchase list at one
// instant. Histories are compared only by length and last element.
type PurchaseHistorySnapshot map[string][]PurchaseRecord
