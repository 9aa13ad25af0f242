package pricefeed

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tokendict/internal/application/port"
)

// Factory 构造 websocket 行情源
// url: 为空时使用交易所默认地址；写入 cache 时使用 ttl
type Factory func(url string, cache port.TickerCache, ttl time.Duration) port.TickerFeed

var (
	mu       sync.RWMutex
	registry = make(map[string]Factory)
)

// Register 由各交易所包的 init() 调用
func Register(exchangeName string, factory Factory) {
	if factory == nil {
		log.Warn().Str("exchange", exchangeName).Msg("invalid ticker feed factory")
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[exchangeName]; exists {
		log.Warn().Str("exchange", exchangeName).Msg("ticker feed factory already registered, overwriting")
	}
	registry[exchangeName] = factory
}

// Get 获取交易所的 websocket 行情源工厂
func Get(exchangeName string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	factory, ok := registry[exchangeName]
	return factory, ok
}

// Registered 已注册 websocket 行情源的交易所，排序后返回
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
