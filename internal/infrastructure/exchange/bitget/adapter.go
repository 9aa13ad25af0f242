package bitget

import (
	"context"
	"encoding/json"
	"net/http"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
)

const (
	defaultAssetBaseURL = "https://api.bitget.com"
	defaultTickerURL    = "https://api.bitget.com/api/v2/spot/market/tickers"
	assetPath           = "/api/v2/spot/public/coins"
)

// Adapter Bitget 现货，资产接口为公开接口
type Adapter struct {
	exchange.Venue
	assetURL string
}

func New(opts exchange.Options) *Adapter {
	return &Adapter{
		Venue: exchange.Venue{
			ID:        "bitget",
			CacheKey:  "bitget_spot",
			Ticker:    exchange.OrDefault(opts.TickerURL, defaultTickerURL),
			Separator: exchange.SepNone,
		},
		assetURL: exchange.JoinURL(exchange.OrDefault(opts.AssetBaseURL, defaultAssetBaseURL), assetPath),
	}
}

func (a *Adapter) AssetRequest(ctx context.Context, _ port.Credentials) (*http.Request, error) {
	return exchange.NewGet(ctx, a.assetURL)
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
	if err := exchange.CheckCode(a.Name(), resp.Code, resp.Msg, []string{"00000"}); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

type coin struct {
	Coin   string            `json:"coin"`
	Chains []json.RawMessage `json:"chains"`
}

type coinChain struct {
	ContractAddress string        `json:"contractAddress"`
	Chain           string        `json:"chain"`
	Rechargeable    exchange.Flag `json:"rechargeable"`
	Withdrawable    exchange.Flag `json:"withdrawable"`
	WithdrawFee     exchange.Num  `json:"withdrawFee"`
}

func (a *Adapter) ParseAssetMetadata(body []byte) ([]domain.AssetListing, error) {
	rows, err := a.decode(body)
	if err != nil {
		return nil, err
	}
	var out []domain.AssetListing
	exchange.DecodeRows(a.Name(), rows, func(c coin) {
		exchange.DecodeRows(a.Name(), c.Chains, func(ch coinChain) {
			if !ch.Rechargeable.Valid || !ch.Withdrawable.Valid {
				return
			}
			if l, ok := exchange.Listing(a.Name(), ch.ContractAddress, ch.Chain, ch.Rechargeable.Value, ch.Withdrawable.Value, ch.WithdrawFee); ok {
				out = append(out, l)
			}
		})
	})
	return out, nil
}

type ticker struct {
	Symbol      string       `json:"symbol"`
	LastPr      exchange.Num `json:"lastPr"`
	BaseVolume  exchange.Num `json:"baseVolume"`
	QuoteVolume exchange.Num `json:"quoteVolume"`
}

func (a *Adapter) ParseRawTicker(body []byte) (map[string]domain.TickerQuote, error) {
	rows, err := a.decode(body)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.TickerQuote, len(rows))
	exchange.DecodeRows(a.Name(), rows, func(t ticker) {
		if t.Symbol != "" {
			out[exchange.NormalizeSymbol(t.Symbol)] = exchange.FullQuote(t.LastPr, t.BaseVolume, t.QuoteVolume)
		}
	})
	return out, nil
}

var _ port.ExchangeAdapter = (*Adapter)(nil)
