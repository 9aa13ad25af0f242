package lbank

import (
	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

func init() {
	exchange.Register("lbank", func(opts exchange.Options) port.ExchangeAdapter {
		return New(opts)
	})
}
