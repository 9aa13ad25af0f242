package bitget

import (
	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

// init() automatically registers the Bitget adapter
func init() {
	exchange.Register("bitget", func(opts exchange.Options) port.ExchangeAdapter {
		return New(opts)
	})
}
