package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"tokendict/internal/application/port"
)

// TickerCache 原始行情 JSON，SET EX 写入，过期即视为不存在
type TickerCache struct {
	rdb    *redis.Client
	prefix string
}

// NewTickerCache prefix 为空时 key 即交易所 ticker key（例如 binance_spot）
func NewTickerCache(rdb *redis.Client, prefix string) *TickerCache {
	return &TickerCache{rdb: rdb, prefix: prefix}
}

func (c *TickerCache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *TickerCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *TickerCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.key(key), payload, ttl).Err()
}

var _ port.TickerCache = (*TickerCache)(nil)
