package htx

import (
	"context"
	"encoding/json"
	"net/http"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
)

const (
	defaultAssetBaseURL = "https://api.huobi.pro"
	defaultTickerURL    = "https://api.huobi.pro/market/tickers"
	assetPath           = "/v1/settings/common/chains"
)

// Adapter HTX (Huobi) 现货
type Adapter struct {
	exchange.Venue
	assetURL string
}

func New(opts exchange.Options) *Adapter {
	return &Adapter{
		Venue: exchange.Venue{
			ID:         "huobi",
			AliasNames: []string{"htx"},
			CacheKey:   "htx_spot",
			Ticker:     exchange.OrDefault(opts.TickerURL, defaultTickerURL),
			Separator:  exchange.SepNone,
		},
		assetURL: exchange.JoinURL(exchange.OrDefault(opts.AssetBaseURL, defaultAssetBaseURL), assetPath),
	}
}

func (a *Adapter) AssetRequest(ctx context.Context, _ port.Credentials) (*http.Request, error) {
	return exchange.NewGet(ctx, a.assetURL)
}

type envelope struct {
	Status  string            `json:"status"`
	ErrCode string            `json:"err-code"`
	ErrMsg  string            `json:"err-msg"`
	Data    []json.RawMessage `json:"data"`
}

func (a *Adapter) decode(body []byte) ([]json.RawMessage, error) {
	var resp envelope
	if err := exchange.Decode(a.Name(), body, &resp); err != nil {
		return nil, err
	}
	if err := exchange.CheckCode(a.Name(), resp.Status, resp.ErrCode+" "+resp.ErrMsg, []string{"ok"}); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// chainInfo ca=合约地址 dn=显示链名 de/we=充/提是否开放；接口不返回手续费
type chainInfo struct {
	CA string `json:"ca"`
	DN string `json:"dn"`
	DE *bool  `json:"de"`
	WE *bool  `json:"we"`
}

func (a *Adapter) ParseAssetMetadata(body []byte) ([]domain.AssetListing, error) {
	rows, err := a.decode(body)
	if err != nil {
		return nil, err
	}
	var out []domain.AssetListing
	exchange.DecodeRows(a.Name(), rows, func(c chainInfo) {
		if c.DE == nil || c.WE == nil {
			return
		}
		if l, ok := exchange.Listing(a.Name(), c.CA, c.DN, *c.DE, *c.WE, exchange.NewNum("0")); ok {
			out = append(out, l)
		}
	})
	return out, nil
}

// ticker vol 为成交额（计价币），HTX 不单独提供基础币成交量
type ticker struct {
	Symbol string       `json:"symbol"`
	Close  exchange.Num `json:"close"`
	Vol    exchange.Num `json:"vol"`
}

func (a *Adapter) ParseRawTicker(body []byte) (map[string]domain.TickerQuote, error) {
	rows, err := a.decode(body)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.TickerQuote, len(rows))
	exchange.DecodeRows(a.Name(), rows, func(t ticker) {
		if t.Symbol == "" {
			return
		}
		q := exchange.Quote(t.Close)
		q.Volume = t.Vol.Field()
		out[exchange.NormalizeSymbol(t.Symbol)] = q
	})
	return out, nil
}

var _ port.ExchangeAdapter = (*Adapter)(nil)
