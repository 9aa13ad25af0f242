package mexc

import (
	"context"
	"encoding/json"
	"net/http"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
)

const (
	defaultAssetBaseURL = "https://api.mexc.com"
	defaultTickerURL    = "https://api.mexc.com/api/v3/ticker/24hr"
	assetPath           = "/api/v3/capital/config/getall"
)

// Adapter MEXC 现货；coin catalog 中的 id 为 mxc
type Adapter struct {
	exchange.Venue
	assetBaseURL string
	signer       Signer
}

func New(opts exchange.Options) *Adapter {
	return &Adapter{
		Venue: exchange.Venue{
			ID:          "mxc",
			AliasNames:  []string{"mexc"},
			CacheKey:    "mexc_spot",
			Ticker:      exchange.OrDefault(opts.TickerURL, defaultTickerURL),
			Separator:   exchange.SepNone,
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

type coinConfig struct {
	Coin        string            `json:"coin"`
	NetworkList []json.RawMessage `json:"networkList"`
}

type network struct {
	Contract       string       `json:"contract"`
	Network        string       `json:"netWork"`
	DepositEnable  *bool        `json:"depositEnable"`
	WithdrawEnable *bool        `json:"withdrawEnable"`
	WithdrawFee    exchange.Num `json:"withdrawFee"`
}

func (a *Adapter) ParseAssetMetadata(body []byte) ([]domain.AssetListing, error) {
	var coins []coinConfig
	if err := exchange.Decode(a.Name(), body, &coins); err != nil {
		return nil, err
	}
	var out []domain.AssetListing
	incomplete := 0
	for _, c := range coins {
		exchange.DecodeRows(a.Name(), c.NetworkList, func(n network) {
			if n.DepositEnable == nil || n.WithdrawEnable == nil {
				incomplete++
				return
			}
			if l, ok := exchange.Listing(a.Name(), n.Contract, n.Network, *n.DepositEnable, *n.WithdrawEnable, n.WithdrawFee); ok {
				out = append(out, l)
			}
		})
	}
	exchange.LogSkipped(a.Name(), incomplete, nil)
	return out, nil
}

type ticker struct {
	Symbol      string       `json:"symbol"`
	LastPrice   exchange.Num `json:"lastPrice"`
	Volume      exchange.Num `json:"volume"`
	QuoteVolume exchange.Num `json:"quoteVolume"`
}

func (a *Adapter) ParseRawTicker(body []byte) (map[string]domain.TickerQuote, error) {
	var rows []json.RawMessage
	if err := exchange.Decode(a.Name(), body, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]domain.TickerQuote, len(rows))
	exchange.DecodeRows(a.Name(), rows, func(t ticker) {
		if t.Symbol != "" {
			out[exchange.NormalizeSymbol(t.Symbol)] = exchange.FullQuote(t.LastPrice, t.Volume, t.QuoteVolume)
		}
	})
	return out, nil
}

var _ port.ExchangeAdapter = (*Adapter)(nil)
