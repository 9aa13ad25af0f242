package kucoin

import (
	"context"
	"encoding/json"
	"net/http"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
)

const (
	defaultAssetBaseURL = "https://api.kucoin.com"
	defaultTickerURL    = "https://api.kucoin.com/api/v1/market/allTickers"
	assetPath           = "/api/v3/currencies"
)

// Adapter KuCoin 现货，交易对形如 BTC-USDT
type Adapter struct {
	exchange.Venue
	assetURL string
}

func New(opts exchange.Options) *Adapter {
	return &Adapter{
		Venue: exchange.Venue{
			ID:        "kucoin",
			CacheKey:  "kucoin_spot",
			Ticker:    exchange.OrDefault(opts.TickerURL, defaultTickerURL),
			Separator: exchange.SepHyphen,
		},
		assetURL: exchange.JoinURL(exchange.OrDefault(opts.AssetBaseURL, defaultAssetBaseURL), assetPath),
	}
}

func (a *Adapter) AssetRequest(ctx context.Context, _ port.Credentials) (*http.Request, error) {
	return exchange.NewGet(ctx, a.assetURL)
}

type envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (a *Adapter) decode(body []byte, data any) error {
	var resp envelope
	if err := exchange.Decode(a.Name(), body, &resp); err != nil {
		return err
	}
	if err := exchange.CheckCode(a.Name(), resp.Code, resp.Msg, []string{"200000"}); err != nil {
		return err
	}
	return exchange.Decode(a.Name(), resp.Data, data)
}

// currency chains 在部分币种上为 null
type currency struct {
	Currency string            `json:"currency"`
	Chains   []json.RawMessage `json:"chains"`
}

type currencyChain struct {
	ChainName         string       `json:"chainName"`
	ContractAddress   string       `json:"contractAddress"`
	IsDepositEnabled  *bool        `json:"isDepositEnabled"`
	IsWithdrawEnabled *bool        `json:"isWithdrawEnabled"`
	WithdrawalMinFee  exchange.Num `json:"withdrawalMinFee"`
}

func (a *Adapter) ParseAssetMetadata(body []byte) ([]domain.AssetListing, error) {
	var rows []json.RawMessage
	if err := a.decode(body, &rows); err != nil {
		return nil, err
	}
	var out []domain.AssetListing
	exchange.DecodeRows(a.Name(), rows, func(c currency) {
		exchange.DecodeRows(a.Name(), c.Chains, func(ch currencyChain) {
			if ch.IsDepositEnabled == nil || ch.IsWithdrawEnabled == nil {
				return
			}
			if l, ok := exchange.Listing(a.Name(), ch.ContractAddress, ch.ChainName, *ch.IsDepositEnabled, *ch.IsWithdrawEnabled, ch.WithdrawalMinFee); ok {
				out = append(out, l)
			}
		})
	})
	return out, nil
}

type allTickers struct {
	Ticker []json.RawMessage `json:"ticker"`
}

type ticker struct {
	Symbol   string       `json:"symbol"`
	Last     exchange.Num `json:"last"`
	Vol      exchange.Num `json:"vol"`
	VolValue exchange.Num `json:"volValue"`
}

func (a *Adapter) ParseRawTicker(body []byte) (map[string]domain.TickerQuote, error) {
	var data allTickers
	if err := a.decode(body, &data); err != nil {
		return nil, err
	}
	out := make(map[string]domain.TickerQuote, len(data.Ticker))
	exchange.DecodeRows(a.Name(), data.Ticker, func(t ticker) {
		if t.Symbol != "" {
			out[exchange.NormalizeSymbol(t.Symbol)] = exchange.FullQuote(t.Last, t.Vol, t.VolValue)
		}
	})
	return out, nil
}

var _ port.ExchangeAdapter = (*Adapter)(nil)
