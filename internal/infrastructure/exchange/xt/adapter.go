package xt

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
	defaultAssetBaseURL = "https://sapi.xt.com"
	defaultTickerURL    = "https://sapi.xt.com/v4/public/ticker"
	assetPath           = "/v4/public/wallet/support/currency"
)

// Adapter XT 现货，交易对为小写 btc_usdt
type Adapter struct {
	exchange.Venue
	assetURL string
}

func New(opts exchange.Options) *Adapter {
	return &Adapter{
		Venue: exchange.Venue{
			ID:        "xt",
			CacheKey:  "xt_spot",
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
	RC     int               `json:"rc"`
	MC     string            `json:"mc"`
	Result []json.RawMessage `json:"result"`
}

func (a *Adapter) decode(body []byte) ([]json.RawMessage, error) {
	var resp envelope
	if err := exchange.Decode(a.Name(), body, &resp); err != nil {
		return nil, err
	}
	if err := exchange.CheckCode(a.Name(), strconv.Itoa(resp.RC), resp.MC, []string{"0"}); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

type currency struct {
	Currency      string            `json:"currency"`
	SupportChains []json.RawMessage `json:"supportChains"`
}

type supportChain struct {
	Chain             string       `json:"chain"`
	Contract          string       `json:"contract"`
	DepositEnabled    *bool        `json:"depositEnabled"`
	WithdrawEnabled   *bool        `json:"withdrawEnabled"`
	WithdrawFeeAmount exchange.Num `json:"withdrawFeeAmount"`
}

func (a *Adapter) ParseAssetMetadata(body []byte) ([]domain.AssetListing, error) {
	rows, err := a.decode(body)
	if err != nil {
		return nil, err
	}
	var out []domain.AssetListing
	exchange.DecodeRows(a.Name(), rows, func(c currency) {
		exchange.DecodeRows(a.Name(), c.SupportChains, func(ch supportChain) {
			if ch.DepositEnabled == nil || ch.WithdrawEnabled == nil {
				return
			}
			if l, ok := exchange.Listing(a.Name(), ch.Contract, ch.Chain, *ch.DepositEnabled, *ch.WithdrawEnabled, ch.WithdrawFeeAmount); ok {
				out = append(out, l)
			}
		})
	})
	return out, nil
}

// ticker s=交易对 c=最新价 q=成交量 v=成交额
type ticker struct {
	S string       `json:"s"`
	C exchange.Num `json:"c"`
	Q exchange.Num `json:"q"`
	V exchange.Num `json:"v"`
}

func (a *Adapter) ParseRawTicker(body []byte) (map[string]domain.TickerQuote, error) {
	rows, err := a.decode(body)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.TickerQuote, len(rows))
	exchange.DecodeRows(a.Name(), rows, func(t ticker) {
		if t.S != "" {
			out[exchange.NormalizeSymbol(t.S)] = exchange.FullQuote(t.C, t.Q, t.V)
		}
	})
	return out, nil
}

var _ port.ExchangeAdapter = (*Adapter)(nil)
