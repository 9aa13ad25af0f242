package gate

import (
	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

func init() {
	exchange.Register("gate", func(opts exchange.Options) port.ExchangeAdapter {
		return New(opts)
	})
}
