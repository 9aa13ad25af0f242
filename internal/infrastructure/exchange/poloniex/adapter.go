package poloniex

import (
	"encoding/json"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
)

const defaultTickerURL = "https://api.poloniex.com/markets/price"

// Adapter Poloniex 现货，只有行情
type Adapter struct {
	exchange.Venue
	exchange.NoAssets
}

func New(opts exchange.Options) *Adapter {
	return &Adapter{
		Venue: exchange.Venue{
			ID:        "poloniex",
			CacheKey:  "poloniex_spot",
			Ticker:    exchange.OrDefault(opts.TickerURL, defaultTickerURL),
			Separator: exchange.SepUnderscore,
		},
	}
}

type ticker struct {
	Symbol string       `json:"symbol"`
	Price  exchange.Num `json:"price"`
}

func (a *Adapter) ParseRawTicker(body []byte) (map[string]domain.TickerQuote, error) {
	var rows []json.RawMessage
	if err := exchange.Decode(a.Name(), body, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]domain.TickerQuote, len(rows))
	exchange.DecodeRows(a.Name(), rows, func(t ticker) {
		if t.Symbol != "" {
			out[exchange.NormalizeSymbol(t.Symbol)] = exchange.Quote(t.Price)
		}
	})
	return out, nil
}

var _ port.ExchangeAdapter = (*Adapter)(nil)
