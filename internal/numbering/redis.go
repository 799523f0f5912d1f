package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAllocator increments a per-date key with INCR. The key is created
// with SETNX from the stored order count, then expires after ttl.
type RedisAllocator struct {
	rdb     redis.UniversalClient
	counter Counter
	ttl     time.Duration
}

// NewRedisAllocator returns an allocator using rdb and counter for seeding.
func NewRedisAllocator(rdb redis.UniversalClient, counter Counter) *RedisAllocator {
	return &RedisAllocator{rdb: rdb, counter: counter, ttl: 48 * time.Hour}
}

func key(prefix string) string { return "order_seq:" + prefix }

func (a *RedisAllocator) Allocate(ctx context.Context, now time.Time) (string, error) {
	prefix := Prefix(now)
	k := key(prefix)

	exists, err := a.rdb.Exists(ctx, k).Result()
	if err != nil {
		return "", fmt.Errorf("check sequence key: %w", err)
	}
	if exists == 0 {
		base, err := a.counter.CountByNumberPrefix(ctx, prefix)
		if err != nil {
			return "", fmt.Errorf("count orders: %w", err)
		}
		if err := a.rdb.SetNX(ctx, k, base, a.ttl).Err(); err != nil {
			return "", fmt.Errorf("seed sequence key: %w", err)
		}
	}

	seq, err := a.rdb.Incr(ctx, k).Result()
	if err != nil {
		return "", fmt.Errorf("increment sequence: %w", err)
	}
	return Format(now, int(seq)), nil
}
