package mexc

import (
	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

func init() {
	exchange.Register("mxc", func(opts exchange.Options) port.ExchangeAdapter {
		return New(opts)
	})
}
