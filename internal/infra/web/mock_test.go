//go:build !integration

package web

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"subscription-credit-sync/internal/domain/model"
	red "subscription-credit-sync/internal/infra/redis"
	"subscription-credit-sync/internal/usecase"
)

// newTestLogger creates a silent logger for tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- lifecycle mock; Processed signals completion of async dispatch ----

type mockLifecycleUC struct {
	Processed chan string // "entitlements:<uid>" / "purchases:<uid>"

	ProcessEntitlementUpdateFunc func(ctx context.Context, uid string, before, after model.EntitlementSnapshot) error
	ProcessPurchaseUpdateFunc    func(ctx context.Context, uid string, before, after model.PurchaseHistorySnapshot) error
}

var _ usecase.LifecycleUseCase = (*mockLifecycleUC)(nil)

func newMockLifecycleUC() *mockLifecycleUC {
	return &mockLifecycleUC{Processed: make(chan string, 16)}
}

func (m *mockLifecycleUC) ProcessEntitlementUpdate(ctx context.Context, uid string, before, after model.EntitlementSnapshot) error {
	if m.ProcessEntitlementUpdateFunc != nil {
		return m.ProcessEntitlementUpdateFunc(ctx, uid, before, after)
	}
	m.Processed <- "entitlements:" + uid
	return nil
}

func (m *mockLifecycleUC) ProcessPurchaseUpdate(ctx context.Context, uid string, before, after model.PurchaseHistorySnapshot) error {
	if m.ProcessPurchaseUpdateFunc != nil {
		return m.ProcessPurchaseUpdateFunc(ctx, uid, before, after)
	}
	m.Processed <- "purchases:" + uid
	return nil
}

// ---- ledger mock ----

type mockLedgerUC struct {
	GetOrCreateFunc func(ctx context.Context, uid string) (*model.CreditBalance, error)
	ConsumeFunc     func(ctx context.Context, uid string, amount int, usageType, usageID string) (*usecase.ConsumeResult, error)
	AddPaidFunc     func(ctx context.Context, uid string, amount int, productID, purchaseID string) error
	ResetGiftFunc   func(ctx context.Context, uid string) error
	ClearGiftFunc   func(ctx context.Context, uid string) error
	RefundFunc      func(ctx context.Context, uid string, amount int) error
}

var _ usecase.CreditLedgerUseCase = (*mockLedgerUC)(nil)

func (m *mockLedgerUC) GetOrCreate(ctx context.Context, uid string) (*model.CreditBalance, error) {
	return m.GetOrCreateFunc(ctx, uid)
}
func (m *mockLedgerUC) Consume(ctx context.Context, uid string, amount int, usageType, usageID string) (*usecase.ConsumeResult, error) {
	return m.ConsumeFunc(ctx, uid, amount, usageType, usageID)
}
func (m *mockLedgerUC) AddPaid(ctx context.Context, uid string, amount int, productID, purchaseID string) error {
	return m.AddPaidFunc(ctx, uid, amount, productID, purchaseID)
}
func (m *mockLedgerUC) ResetGift(ctx context.Context, uid string) error {
	return m.ResetGiftFunc(ctx, uid)
}
func (m *mockLedgerUC) ClearGift(ctx context.Context, uid string) error {
	return m.ClearGiftFunc(ctx, uid)
}
func (m *mockLedgerUC) Refund(ctx context.Context, uid string, amount int) error {
	return m.RefundFunc(ctx, uid, amount)
}

// ---- stats mock ----

type mockStatsUC struct {
	TotalsFunc func(ctx context.Context) (int, int64, int64, error)
}

var _ usecase.StatsUseCase = (*mockStatsUC)(nil)

func (m *mockStatsUC) Totals(ctx context.Context) (int, int64, int64, error) {
	return m.TotalsFunc(ctx)
}

// ---- redis client mock backing the rate limiter ----

type mockRedisClient struct {
	counts map[string]int64

	IncrFunc func(ctx context.Context, key string) (int64, error)
}

var _ red.RedisClient = (*mockRedisClient)(nil)

func newMockRedisClient() *mockRedisClient {
	return &mockRedisClient{counts: make(map[string]int64)}
}

func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	if m.IncrFunc != nil {
		return m.IncrFunc(ctx, key)
	}
	m.counts[key]++
	return m.counts[key], nil
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}
func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error       { return nil }
func (m *mockRedisClient) Close() error                                        { return nil }
