package bitmart

import (
	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

func init() {
	exchange.Register("bitmart", func(opts exchange.Options) port.ExchangeAdapter {
		return New(opts)
	})
}
