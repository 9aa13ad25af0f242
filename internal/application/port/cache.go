package port

import (
	"context"
	"time"
)

// TickerCache 每个交易所最近一次的原始行情 JSON，过期后视为不存在
type TickerCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}
