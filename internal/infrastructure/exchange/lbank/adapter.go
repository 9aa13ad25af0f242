package lbank

import (
	"bytes"
	"encoding/json"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
)

const defaultTickerURL = "https://api.lbkex.com/v2/supplement/ticker/price.do"

// Adapter LBank 现货，只有行情，没有资产元数据接口
type Adapter struct {
	exchange.Venue
	exchange.NoAssets
}

func New(opts exchange.Options) *Adapter {
	return &Adapter{
		Venue: exchange.Venue{
			ID:        "lbank",
			CacheKey:  "lbank_spot",
			Ticker:    exchange.OrDefault(opts.TickerURL, defaultTickerURL),
			Separator: exchange.SepUnderscore,
		},
	}
}

type envelope struct {
	Data []json.RawMessage `json:"data"`
}

type ticker struct {
	Symbol string       `json:"symbol"`
	Price  exchange.Num `json:"price"`
}

// ParseRawTicker accepts either a bare array or {"data": [...]}.
func (a *Adapter) ParseRawTicker(body []byte) (map[string]domain.TickerQuote, error) {
	var rows []json.RawMessage
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := exchange.Decode(a.Name(), trimmed, &rows); err != nil {
			return nil, err
		}
	} else {
		var resp envelope
		if err := exchange.Decode(a.Name(), trimmed, &resp); err != nil {
			return nil, err
		}
		rows = resp.Data
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
