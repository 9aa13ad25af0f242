package okx

import (
	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

// init() automatically registers the OKX adapter
func init() {
	exchange.Register("okex", func(opts exchange.Options) port.ExchangeAdapter {
		return New(opts)
	})
}
