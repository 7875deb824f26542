// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"subscription-credit-sync/internal/domain/ports/repository"
	"subscription-credit-sync/internal/infra/logging"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase exposes aggregate balance figures for the admin endpoint and
// the periodic gauge refresh.
type StatsUseCase interface {
	// Totals returns the number of balance records and the outstanding
	// credit split by bucket.
	Totals(ctx context.Context) (balances int, gift int64, paid int64, err error)
}

type statsUC struct {
	balances repository.CreditBalanceRepository
	log      *zerolog.Logger
}

func NewStatsUseCase(balances repository.CreditBalanceRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{balances: balances, log: logger}
}

func (u *statsUC) Totals(ctx context.Context) (int, int64, int64, error) {
	defer logging.TraceDuration(u.log, "StatsUC.Totals")()

	n, err := u.balances.CountBalances(ctx, repository.NoTX)
	if err != nil {
		return 0, 0, 0, err
	}
	gift, paid, err := u.balances.SumOutstanding(ctx, repository.NoTX)
	if err != nil {
		return 0, 0, 0, err
	}
	return n, gift, paid, nil
}
