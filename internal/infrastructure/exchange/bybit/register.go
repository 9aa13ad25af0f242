package bybit

import (
	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

// init() automatically registers the Bybit adapter
func init() {
	exchange.Register("bybit", func(opts exchange.Options) port.ExchangeAdapter {
		return New(opts)
	})
}
