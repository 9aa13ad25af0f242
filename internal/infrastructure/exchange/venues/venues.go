// Package venues links every exchange adapter into the binary. Importing it
// runs each venue package's init registration.
package venues

import (
	_ "tokendict/internal/infrastructure/exchange/binance"
	_ "tokendict/internal/infrastructure/exchange/bitget"
	_ "tokendict/internal/infrastructure/exchange/bitmart"
	_ "tokendict/internal/infrastructure/exchange/bybit"
	_ "tokendict/internal/infrastructure/exchange/gate"
	_ "tokendict/internal/infrastructure/exchange/htx"
	_ "tokendict/internal/infrastructure/exchange/kucoin"
	_ "tokendict/internal/infrastructure/exchange/lbank"
	_ "tokendict/internal/infrastructure/exchange/mexc"
	_ "tokendict/internal/infrastructure/exchange/okx"
	_ "tokendict/internal/infrastructure/exchange/poloniex"
	_ "tokendict/internal/infrastructure/exchange/xt"
)
