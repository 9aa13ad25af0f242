package bitmart

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
)

const (
	defaultAssetBaseURL = "https://api-cloud.bitmart.com"
	defaultTickerURL    = "https://api-cloud.bitmart.com/spot/v1/ticker"
	assetPath           = "/account/v1/currencies"
)

// Adapter BitMart 现货，交易对形如 BTC_USDT
type Adapter struct {
	exchange.Venue
	assetURL string
}

func New(opts exchange.Options) *Adapter {
	return &Adapter{
		Venue: exchange.Venue{
			ID:        "bitmart",
			CacheKey:  "bitmart_spot",
			Ticker:    exchange.OrDefault(opts.TickerURL, defaultTickerURL),
			Separator: exchange.SepUnderscore,
		},
		assetURL: exchange.JoinURL(exchange.OrDefault(opts.AssetBaseURL, defaultAssetBaseURL), assetPath),
	}
}

func (a *Adapter) AssetRequest(ctx context.Context, _ port.Credentials) (*http.Request, error) {
	return exchange.NewGet(ctx, a.assetURL)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *Adapter) decode(body []byte, data any) error {
	var resp envelope
	if err := exchange.Decode(a.Name(), body, &resp); err != nil {
		return err
	}
	if err := exchange.CheckCode(a.Name(), strconv.Itoa(resp.Code), resp.Message, []string{"1000"}); err != nil {
		return err
	}
	return exchange.Decode(a.Name(), resp.Data, data)
}

type currencyList struct {
	Currencies []json.RawMessage `json:"currencies"`
}

type currency struct {
	ContractAddress string       `json:"contract_address"`
	Network         string       `json:"network"`
	DepositEnabled  *bool        `json:"deposit_enabled"`
	WithdrawEnabled *bool        `json:"withdraw_enabled"`
	WithdrawFee     exchange.Num `json:"withdraw_fee"`
}

func (a *Adapter) ParseAssetMetadata(body []byte) ([]domain.AssetListing, error) {
	var data currencyList
	if err := a.decode(body, &data); err != nil {
		return nil, err
	}
	var out []domain.AssetListing
	exchange.DecodeRows(a.Name(), data.Currencies, func(c currency) {
		if c.DepositEnabled == nil || c.WithdrawEnabled == nil {
			return
		}
		if l, ok := exchange.Listing(a.Name(), c.ContractAddress, c.Network, *c.DepositEnabled, *c.WithdrawEnabled, c.WithdrawFee); ok {
			out = append(out, l)
		}
	})
	return out, nil
}

type tickerList struct {
	Tickers []json.RawMessage `json:"tickers"`
}

type ticker struct {
	Symbol         string       `json:"symbol"`
	LastPrice      exchange.Num `json:"last_price"`
	BaseVolume24h  exchange.Num `json:"base_volume_24h"`
	QuoteVolume24h exchange.Num `json:"quote_volume_24h"`
}

func (a *Adapter) ParseRawTicker(body []byte) (map[string]domain.TickerQuote, error) {
	var data tickerList
	if err := a.decode(body, &data); err != nil {
		return nil, err
	}
	out := make(map[string]domain.TickerQuote, len(data.Tickers))
	exchange.DecodeRows(a.Name(), data.Tickers, func(t ticker) {
		if t.Symbol != "" {
			out[exchange.NormalizeSymbol(t.Symbol)] = exchange.FullQuote(t.LastPrice, t.BaseVolume24h, t.QuoteVolume24h)
		}
	})
	return out, nil
}

var _ port.ExchangeAdapter = (*Adapter)(nil)
