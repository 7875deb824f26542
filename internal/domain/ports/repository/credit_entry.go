package repository

import (
	"context"

	"subscription-credit-sync/internal/domain/model"
)

// CreditEntryRepository is the port for the append-only mutation journal.
type CreditEntryRepository interface {
	Append(ctx context.Context, tx Tx, e *model.CreditEntry) error
}
