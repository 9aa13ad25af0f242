package bybit

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
	defaultAssetBaseURL = "https://api.bybit.com"
	defaultTickerURL    = "https://api.bybit.com/v5/market/tickers?category=spot"
	assetPath           = "/v5/asset/coin/query-info"
)

// 10003 invalid key, 10004 sign error, 10005 permission denied, 33004 key expired
var authCodes = []string{"10003", "10004", "10005", "33004"}

// Adapter Bybit 现货
type Adapter struct {
	exchange.Venue
	assetBaseURL string
	signer       Signer
}

// New 创建 Bybit 适配器；行情缓存 key 与资产目录 id 不同
func New(opts exchange.Options) *Adapter {
	return &Adapter{
		Venue: exchange.Venue{
			ID:          "bybit",
			Catalog:     "bybit_spot",
			CacheKey:    "bybit_spot",
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

type envelope[T any] struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  T      `json:"result"`
}

func (e envelope[T]) check(exchangeName string) error {
	return exchange.CheckCode(exchangeName, strconv.Itoa(e.RetCode), e.RetMsg, []string{"0"}, authCodes...)
}

type coinRows struct {
	Rows []struct {
		Coin   string            `json:"coin"`
		Chains []json.RawMessage `json:"chains"`
	} `json:"rows"`
}

type coinChain struct {
	ContractAddress string        `json:"contractAddress"`
	Chain           string        `json:"chain"`
	ChainDeposit    exchange.Flag `json:"chainDeposit"`
	ChainWithdraw   exchange.Flag `json:"chainWithdraw"`
	WithdrawFee     exchange.Num  `json:"withdrawFee"`
}

func (a *Adapter) ParseAssetMetadata(body []byte) ([]domain.AssetListing, error) {
	var resp envelope[coinRows]
	if err := exchange.Decode(a.Name(), body, &resp); err != nil {
		return nil, err
	}
	if err := resp.check(a.Name()); err != nil {
		return nil, err
	}
	var out []domain.AssetListing
	for _, row := range resp.Result.Rows {
		exchange.DecodeRows(a.Name(), row.Chains, func(c coinChain) {
			if !c.ChainDeposit.Valid || !c.ChainWithdraw.Valid {
				return
			}
			if l, ok := exchange.Listing(a.Name(), c.ContractAddress, c.Chain, c.ChainDeposit.Value, c.ChainWithdraw.Value, c.WithdrawFee); ok {
				out = append(out, l)
			}
		})
	}
	return out, nil
}

type tickerList struct {
	List []json.RawMessage `json:"list"`
}

type ticker struct {
	Symbol      string       `json:"symbol"`
	LastPrice   exchange.Num `json:"lastPrice"`
	Volume24h   exchange.Num `json:"volume24h"`
	Turnover24h exchange.Num `json:"turnover24h"`
}

func (a *Adapter) ParseRawTicker(body []byte) (map[string]domain.TickerQuote, error) {
	var resp envelope[tickerList]
	if err := exchange.Decode(a.Name(), body, &resp); err != nil {
		return nil, err
	}
	if err := resp.check(a.Name()); err != nil {
		return nil, err
	}
	out := make(map[string]domain.TickerQuote, len(resp.Result.List))
	exchange.DecodeRows(a.Name(), resp.Result.List, func(t ticker) {
		if t.Symbol != "" {
			out[exchange.NormalizeSymbol(t.Symbol)] = exchange.FullQuote(t.LastPrice, t.Volume24h, t.Turnover24h)
		}
	})
	return out, nil
}

var _ port.ExchangeAdapter = (*Adapter)(nil)
