package okx

import (
	"context"
	"encoding/json"
	"net/http"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
)

const (
	defaultAssetBaseURL = "https://www.okx.com"
	defaultTickerURL    = "https://www.okx.com/api/v5/market/tickers?instType=SPOT"
	assetPath           = "/api/v5/asset/currencies"
)

// 50111 invalid key, 50113 invalid sign, 50102 timestamp expired, 50105 passphrase
var authCodes = []string{"50102", "50105", "50111", "50113"}

// Adapter OKX 现货，目录中的名称为 okex
type Adapter struct {
	exchange.Venue
	assetBaseURL string
	signer       Signer
}

func New(opts exchange.Options) *Adapter {
	return &Adapter{
		Venue: exchange.Venue{
			ID:          "okex",
			AliasNames:  []string{"okx"},
			CacheKey:    "okx_spot",
			Ticker:      exchange.OrDefault(opts.TickerURL, defaultTickerURL),
			Separator:   exchange.SepHyphen,
			AssetSigned: true,
		},
		assetBaseURL: exchange.OrDefault(opts.AssetBaseURL, defaultAssetBaseURL),
	}
}

func (a *Adapter) AssetRequest(ctx context.Context, creds port.Credentials) (*http.Request, error) {
	return exchange.NewSignedRequest(ctx, a.signer, creds, a.assetBaseURL, exchange.Request{
		Method: http.MethodGet,
		Path:   assetPath,
	})
}

type envelope struct {
	Code string            `json:"code"`
	Msg  string            `json:"msg"`
	Data []json.RawMessage `json:"data"`
}

func (a *Adapter) decode(body []byte) ([]json.RawMessage, error) {
	var resp envelope
	if err := exchange.Decode(a.Name(), body, &resp); err != nil {
		return nil, err
	}
	if err := exchange.CheckCode(a.Name(), resp.Code, resp.Msg, []string{"0"}, authCodes...); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

type currency struct {
	Ccy    string       `json:"ccy"`
	CtAddr string       `json:"ctAddr"`
	Chain  string       `json:"chain"` // e.g. USDT-ERC20
	CanDep *bool        `json:"canDep"`
	CanWd  *bool        `json:"canWd"`
	Fee    exchange.Num `json:"fee"`
}

func (a *Adapter) ParseAssetMetadata(body []byte) ([]domain.AssetListing, error) {
	rows, err := a.decode(body)
	if err != nil {
		return nil, err
	}
	var out []domain.AssetListing
	exchange.DecodeRows(a.Name(), rows, func(c currency) {
		if c.CanDep == nil || c.CanWd == nil {
			return
		}
		if l, ok := exchange.Listing(a.Name(), c.CtAddr, c.Chain, *c.CanDep, *c.CanWd, c.Fee); ok {
			out = append(out, l)
		}
	})
	return out, nil
}

type ticker struct {
	InstID    string       `json:"instId"`
	Last      exchange.Num `json:"last"`
	Vol24h    exchange.Num `json:"vol24h"`
	VolCcy24h exchange.Num `json:"volCcy24h"`
}

func (a *Adapter) ParseRawTicker(body []byte) (map[string]domain.TickerQuote, error) {
	rows, err := a.decode(body)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.TickerQuote, len(rows))
	exchange.DecodeRows(a.Name(), rows, func(t ticker) {
		if t.InstID != "" {
			out[exchange.NormalizeSymbol(t.InstID)] = exchange.FullQuote(t.Last, t.Vol24h, t.VolCcy24h)
		}
	})
	return out, nil
}

var _ port.ExchangeAdapter = (*Adapter)(nil)
