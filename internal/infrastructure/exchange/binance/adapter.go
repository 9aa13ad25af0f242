package binance

import (
	"context"
	"encoding/json"
	"net/http"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
)

const (
	defaultAssetBaseURL = "https://api.binance.com"
	defaultTickerURL    = "https://api.binance.com/api/v3/ticker/price"
	assetPath           = "/sapi/v1/capital/config/getall"
)

// Adapter Binance 现货
type Adapter struct {
	exchange.Venue
	assetBaseURL string
	signer       Signer
}

// New 创建 Binance 适配器
func New(opts exchange.Options) *Adapter {
	return &Adapter{
		Venue: exchange.Venue{
			ID:          "binance",
			CacheKey:    "binance_spot",
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
	ContractAddress string       `json:"contractAddress"`
	Network         string       `json:"network"`
	DepositEnable   *bool        `json:"depositEnable"`
	WithdrawEnable  *bool        `json:"withdrawEnable"`
	WithdrawFee     exchange.Num `json:"withdrawFee"`
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
			if l, ok := exchange.Listing(a.Name(), n.ContractAddress, n.Network, *n.DepositEnable, *n.WithdrawEnable, n.WithdrawFee); ok {
				out = append(out, l)
			}
		})
	}
	exchange.LogSkipped(a.Name(), incomplete, nil)
	return out, nil
}

// ticker REST /api/v3/ticker/price 只有 symbol/price；
// websocket 合成的快照额外带 volume/quoteVolume
type ticker struct {
	Symbol      string        `json:"symbol"`
	Price       exchange.Num  `json:"price"`
	Volume      *exchange.Num `json:"volume,omitempty"`
	QuoteVolume *exchange.Num `json:"quoteVolume,omitempty"`
}

func (a *Adapter) ParseRawTicker(body []byte) (map[string]domain.TickerQuote, error) {
	var rows []json.RawMessage
	if err := exchange.Decode(a.Name(), body, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]domain.TickerQuote, len(rows))
	exchange.DecodeRows(a.Name(), rows, func(t ticker) {
		if t.Symbol == "" {
			return
		}
		q := exchange.Quote(t.Price)
		if t.Volume != nil && t.QuoteVolume != nil {
			q = exchange.FullQuote(t.Price, *t.Volume, *t.QuoteVolume)
		}
		out[exchange.NormalizeSymbol(t.Symbol)] = q
	})
	return out, nil
}

var _ port.ExchangeAdapter = (*Adapter)(nil)
