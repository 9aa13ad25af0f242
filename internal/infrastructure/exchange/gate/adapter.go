package gate

import (
	"context"
	"encoding/json"
	"net/http"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
)

const (
	defaultAssetBaseURL = "https://api.gateio.ws"
	defaultTickerURL    = "https://api.gateio.ws/api/v4/spot/tickers"
	assetPath           = "/api/v4/spot/currencies"
)

// Adapter Gate 现货；资产接口只给出 disabled 标志，不含手续费
type Adapter struct {
	exchange.Venue
	assetURL string
}

func New(opts exchange.Options) *Adapter {
	return &Adapter{
		Venue: exchange.Venue{
			ID:        "gate",
			CacheKey:  "gate_spot",
			Ticker:    exchange.OrDefault(opts.TickerURL, defaultTickerURL),
			Separator: exchange.SepUnderscore,
		},
		assetURL: exchange.JoinURL(exchange.OrDefault(opts.AssetBaseURL, defaultAssetBaseURL), assetPath),
	}
}

func (a *Adapter) AssetRequest(ctx context.Context, _ port.Credentials) (*http.Request, error) {
	return exchange.NewGet(ctx, a.assetURL)
}

type currency struct {
	Currency string            `json:"currency"`
	Chains   []json.RawMessage `json:"chains"`
}

type currencyChain struct {
	Name             string `json:"name"`
	Addr             string `json:"addr"`
	DepositDisabled  *bool  `json:"deposit_disabled"`
	WithdrawDisabled *bool  `json:"withdraw_disabled"`
}

func (a *Adapter) ParseAssetMetadata(body []byte) ([]domain.AssetListing, error) {
	var rows []json.RawMessage
	if err := exchange.Decode(a.Name(), body, &rows); err != nil {
		return nil, err
	}
	var out []domain.AssetListing
	exchange.DecodeRows(a.Name(), rows, func(c currency) {
		exchange.DecodeRows(a.Name(), c.Chains, func(ch currencyChain) {
			if ch.DepositDisabled == nil || ch.WithdrawDisabled == nil {
				return
			}
			if l, ok := exchange.Listing(a.Name(), ch.Addr, ch.Name, !*ch.DepositDisabled, !*ch.WithdrawDisabled, exchange.NewNum("0")); ok {
				out = append(out, l)
			}
		})
	})
	return out, nil
}

type ticker struct {
	CurrencyPair string       `json:"currency_pair"`
	Last         exchange.Num `json:"last"`
	BaseVolume   exchange.Num `json:"base_volume"`
	QuoteVolume  exchange.Num `json:"quote_volume"`
}

func (a *Adapter) ParseRawTicker(body []byte) (map[string]domain.TickerQuote, error) {
	var rows []json.RawMessage
	if err := exchange.Decode(a.Name(), body, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]domain.TickerQuote, len(rows))
	exchange.DecodeRows(a.Name(), rows, func(t ticker) {
		if t.CurrencyPair != "" {
			out[exchange.NormalizeSymbol(t.CurrencyPair)] = exchange.FullQuote(t.Last, t.BaseVolume, t.QuoteVolume)
		}
	})
	return out, nil
}

var _ port.ExchangeAdapter = (*Adapter)(nil)
