// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subscription-credit-sync/internal/config"
	pg "subscription-credit-sync/internal/infra/db/postgres"
	"subscription-credit-sync/internal/infra/logging"
	"subscription-credit-sync/internal/infra/metrics"
	red "subscription-credit-sync/internal/infra/redis"
	"subscription-credit-sync/internal/infra/sched"
	"subscription-credit-sync/internal/infra/web"
	"subscription-credit-sync/internal/infra/worker"
	"subscription-credit-sync/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no sampling)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	balanceRepo := pg.NewBalanceRepoCacheDecorator(pg.NewBalanceRepo(pool), redisClient, cfg.Redis.TTL)
	entryRepo := pg.NewCreditEntryRepo(pool)

	// ---- Use cases ----
	ledgerLog := logger.With().Str("component", "CreditLedgerUC").Logger()
	ledgerUC := usecase.NewCreditLedgerUseCase(balanceRepo, entryRepo, tm, &ledgerLog)

	lifecycleLog := logger.With().Str("component", "LifecycleUC").Logger()
	lifecycleUC := usecase.NewLifecycleUseCase(
		ledgerUC,
		usecase.NewEntitlementDiffEngine(),
		usecase.NewPurchaseDiffEngine(),
		&lifecycleLog,
	)

	statsLog := logger.With().Str("component", "StatsUC").Logger()
	statsUC := usecase.NewStatsUseCase(balanceRepo, &statsLog)

	// ---- Dispatch pool ----
	poolLog := logger.With().Str("component", "WorkerPool").Logger()
	dispatch := worker.NewPool(cfg.Webhook.Workers, &poolLog)
	dispatch.Start(ctx)
	defer dispatch.Stop()

	// ---- HTTP server ----
	webLog := logger.With().Str("component", "Web").Logger()
	srv := web.NewServer(lifecycleUC, ledgerUC, statsUC, rateLimiter, dispatch, cfg, &webLog)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Stats worker ----
	statsWorker := sched.NewStatsWorker(cfg.Scheduler.StatsInterval, statsUC, locker, logger)
	go func() { _ = statsWorker.Run(ctx) }()

	// ---- DB pool gauge refresh ----
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st := pool.Stat()
				metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
			}
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
