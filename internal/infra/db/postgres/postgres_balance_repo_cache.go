package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"subscription-credit-sync/internal/domain/model"
	"subscription-credit-sync/internal/domain/ports/repository"
	"subscription-credit-sync/internal/infra/metrics"
	red "subscription-credit-sync/internal/infra/redis"
)

var _ repository.CreditBalanceRepository = (*balanceRepoCacheDecorator)(nil)

type balanceRepoCacheDecorator struct {
	inner repository.CreditBalanceRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewBalanceRepoCacheDecorator(inner repository.CreditBalanceRepository, cache red.RedisClient, ttl time.Duration) repository.CreditBalanceRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &balanceRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func balanceKey(uid string) string {
	return fmt.Sprintf("balance:uid:%s", uid)
}

// Every write invalidates the cached balance; the next read repopulates it.
func (d *balanceRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, b *model.CreditBalance) error {
	_ = d.cache.Del(ctx, balanceKey(b.UID))
	return d.inner.Save(ctx, tx, b)
}

func (d *balanceRepoCacheDecorator) FindByUID(ctx context.Context, tx repository.Tx, uid string) (*model.CreditBalance, error) {
	// A transactional read must hit the database so the row lock is taken;
	// serving it from cache would let concurrent writers race.
	if tx != nil {
		metrics.IncCacheRequest("balance", "bypass")
		return d.inner.FindByUID(ctx, tx, uid)
	}

	key := balanceKey(uid)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var b model.CreditBalance
		if json.Unmarshal([]byte(val), &b) == nil {
			metrics.IncCacheRequest("balance", "hit")
			return &b, nil
		}
	}
	if err != nil && err != redis.Nil {
		metrics.IncCacheRequest("balance", "error")
	}

	metrics.IncCacheRequest("balance", "miss")
	b, err := d.inner.FindByUID(ctx, tx, uid)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(b); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return b, nil
}

// Pass-through methods that don't need caching
func (d *balanceRepoCacheDecorator) CountBalances(ctx context.Context, tx repository.Tx) (int, error) {
	return d.inner.CountBalances(ctx, tx)
}

func (d *balanceRepoCacheDecorator) SumOutstanding(ctx context.Context, tx repository.Tx) (int64, int64, error) {
	return d.inner.SumOutstanding(ctx, tx)
}
