package binance

import (
	"time"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
	"tokendict/internal/infrastructure/pricefeed"
)

// init() automatically registers the Binance adapter and its mini ticker feed
func init() {
	exchange.Register("binance", func(opts exchange.Options) port.ExchangeAdapter {
		return New(opts)
	})
	pricefeed.Register("binance", func(url string, cache port.TickerCache, ttl time.Duration) port.TickerFeed {
		return NewMiniTickerFeed(url, cache, ttl)
	})
}
