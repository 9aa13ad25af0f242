package xt

import (
	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

func init() {
	exchange.Register("xt", func(opts exchange.Options) port.ExchangeAdapter {
		return New(opts)
	})
}
