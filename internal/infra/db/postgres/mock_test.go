//go:build !integration

package postgres

import (
	"context"
	"time"

	"subscription-credit-sync/internal/domain/model"
	"subscription-credit-sync/internal/domain/ports/repository"
	red "subscription-credit-sync/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerBalanceRepo mocks the database repository that the decorator wraps.
type mockInnerBalanceRepo struct {
	SaveFunc           func(ctx context.Context, tx repository.Tx, b *model.CreditBalance) error
	FindByUIDFunc      func(ctx context.Context, tx repository.Tx, uid string) (*model.CreditBalance, error)
	CountBalancesFunc  func(ctx context.Context, tx repository.Tx) (int, error)
	SumOutstandingFunc func(ctx context.Context, tx repository.Tx) (int64, int64, error)
}

func (m *mockInnerBalanceRepo) Save(ctx context.Context, tx repository.Tx, b *model.CreditBalance) error {
	return m.SaveFunc(ctx, tx, b)
}
func (m *mockInnerBalanceRepo) FindByUID(ctx context.Context, tx repository.Tx, uid string) (*model.CreditBalance, error) {
	return m.FindByUIDFunc(ctx, tx, uid)
}
func (m *mockInnerBalanceRepo) CountBalances(ctx context.Context, tx repository.Tx) (int, error) {
	return m.CountBalancesFunc(ctx, tx)
}
func (m *mockInnerBalanceRepo) SumOutstanding(ctx context.Context, tx repository.Tx) (int64, int64, error) {
	return m.SumOutstandingFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
