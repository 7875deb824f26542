package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"subscription-credit-sync/internal/domain"
	"subscription-credit-sync/internal/infra/metrics"
	red "subscription-credit-sync/internal/infra/redis"
	"subscription-credit-sync/internal/usecase"
)

const statsLockKey = "credit_sync:stats_refresh"

// StatsWorker periodically refreshes the outstanding-credit gauges. A redis
// lock keeps replicas from hammering the aggregate queries in lockstep; the
// replica that loses the lock just skips the tick.
type StatsWorker struct {
	interval time.Duration
	statsUC  usecase.StatsUseCase
	locker   red.Locker
	log      *zerolog.Logger
}

func NewStatsWorker(interval time.Duration, statsUC usecase.StatsUseCase, locker red.Locker, logger *zerolog.Logger) *StatsWorker {
	statsLog := logger.With().Str("component", "StatsWorker").Logger()
	return &StatsWorker{
		interval: interval,
		statsUC:  statsUC,
		locker:   locker,
		log:      &statsLog,
	}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Prime the gauges once at startup instead of waiting a full interval.
	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stats worker")
			return ctx.Err()
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsWorker) refresh(ctx context.Context) {
	token, err := w.locker.TryLock(ctx, statsLockKey, w.interval)
	if err != nil {
		if !errors.Is(err, domain.ErrLockNotAcquired) {
			w.log.Warn().Err(err).Msg("stats lock error")
		}
		return
	}
	defer func() { _ = w.locker.Unlock(ctx, statsLockKey, token) }()

	balances, gift, paid, err := w.statsUC.Totals(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("stats refresh failed")
		return
	}
	metrics.SetBalancesTotal(balances)
	metrics.SetOutstanding(gift, paid)
	w.log.Debug().Int("balances", balances).
		Int64("gift", gift).Int64("paid", paid).
		Msg("stats gauges refreshed")
}
