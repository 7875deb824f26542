package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/rs/zerolog"

	"subscription-credit-sync/internal/config"
	pg "subscription-credit-sync/internal/infra/db/postgres"
	"subscription-credit-sync/internal/usecase"
)

// Seeds a few demo balances so the admin endpoints have something to show.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	logger := zerolog.Nop()
	ledgerUC := usecase.NewCreditLedgerUseCase(
		pg.NewBalanceRepo(pool),
		pg.NewCreditEntryRepo(pool),
		pg.NewTxManager(pool),
		&logger,
	)

	statsUC := usecase.NewStatsUseCase(pg.NewBalanceRepo(pool), &logger)
	n, _, _, err := statsUC.Totals(ctx)
	if err != nil {
		log.Fatalf("count balances: %v", err)
	}
	if n > 0 {
		fmt.Printf("%d balances already present. No changes.\n", n)
		return
	}

	seed := []struct {
		UID      string
		Paid     int
		WithGift bool
	}{
		{"demo-subscriber", 0, true},
		{"demo-buyer", 20, false},
		{"demo-mixed", 10, true},
	}

	for _, s := range seed {
		if s.WithGift {
			if err := ledgerUC.ResetGift(ctx, s.UID); err != nil {
				log.Fatalf("reset gift for %q: %v", s.UID, err)
			}
		} else {
			if _, err := ledgerUC.GetOrCreate(ctx, s.UID); err != nil {
				log.Fatalf("create balance for %q: %v", s.UID, err)
			}
		}
		if s.Paid > 0 {
			if err := ledgerUC.AddPaid(ctx, s.UID, s.Paid, "seed", "seed"); err != nil {
				log.Fatalf("add paid for %q: %v", s.UID, err)
			}
		}
		fmt.Printf("seeded: %s (paid=%d, gift=%v)\n", s.UID, s.Paid, s.WithGift)
	}

	fmt.Println("Seeding complete.")
}
