package kucoin

import (
	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

func init() {
	exchange.Register("kucoin", func(opts exchange.Options) port.ExchangeAdapter {
		return New(opts)
	})
}
