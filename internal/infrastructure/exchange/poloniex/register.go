package poloniex

import (
	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

func init() {
	exchange.Register("poloniex", func(opts exchange.Options) port.ExchangeAdapter {
		return New(opts)
	})
}
