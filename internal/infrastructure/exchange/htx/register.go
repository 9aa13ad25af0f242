package htx

import (
	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

func init() {
	exchange.Register("huobi", func(opts exchange.Options) port.ExchangeAdapter {
		return New(opts)
	})
}
