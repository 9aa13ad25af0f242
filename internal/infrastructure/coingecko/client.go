// Package coingecko reads the coin catalog and per-exchange tickers from the
// CoinGecko API. All calls share one throttle.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
)

const (
	DefaultBaseURL = "https://api.coingecko.com"
	apiKeyHeader   = "x-cg-demo-api-key"
)

// Config 为 0 的字段使用默认值；RequestsPerMinute < 0 表示不限速
type Config struct {
	BaseURL           string
	APIKey            string
	RequestsPerMinute int           // 默认 30
	Timeout           time.Duration // 默认 180s
	MaxPages          int           // 默认 100
}

type Client struct {
	http     *http.Client
	baseURL  string
	apiKey   string
	limiter  *rate.Limiter
	maxPages int
}

func New(cfg Config) *Client {
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 180 * time.Second
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 100
	}
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	return &Client{
		http:     exchange.NewHTTPClient(cfg.Timeout),
		baseURL:  strings.TrimRight(exchange.OrDefault(cfg.BaseURL, DefaultBaseURL), "/"),
		apiKey:   cfg.APIKey,
		limiter:  rate.NewLimiter(limit, 1),
		maxPages: cfg.MaxPages,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := exchange.NewGet(ctx, u)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	return exchange.Do(c.http, req)
}

// Coins 完整币种列表，含各链合约地址
func (c *Client) Coins(ctx context.Context) ([]domain.CatalogEntry, error) {
	body, err := c.get(ctx, "/api/v3/coins/list", url.Values{"include_platform": {"true"}})
	if err != nil {
		return nil, fmt.Errorf("coingecko coins: %w", err)
	}
	var coins []domain.CatalogEntry
	if err := json.Unmarshal(body, &coins); err != nil {
		return nil, fmt.Errorf("coingecko coins: %w", &exchange.ParseError{Exchange: "coingecko", Err: err})
	}
	return coins, nil
}

type tickerPage struct {
	Tickers []json.RawMessage `json:"tickers"`
}

type ticker struct {
	Base     string       `json:"base"`
	Target   string       `json:"target"`
	Last     exchange.Num `json:"last"`
	Volume   exchange.Num `json:"volume"`
	TradeURL string       `json:"trade_url"`
	CoinID   string       `json:"coin_id"`
}

// Tickers 按页拉取某交易所全部行情，直到空页、非 2xx 或 MaxPages。
// 第一页失败返回错误；之后的失败保留已取得的数据。
func (c *Client) Tickers(ctx context.Context, exchangeID string) ([]domain.RawTicker, error) {
	path := "/api/v3/exchanges/" + url.PathEscape(exchangeID) + "/tickers"
	logger := log.With().Str("exchange", exchangeID).Logger()

	var out []domain.RawTicker
	for page := 1; page <= c.maxPages; page++ {
		body, err := c.get(ctx, path, url.Values{"page": {strconv.Itoa(page)}})
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("coingecko tickers %s: %w", exchangeID, err)
			}
			logger.Warn().Int("page", page).Str("kind", port.ErrorKind(err)).Err(err).Msg("ticker paging stopped")
			break
		}
		var p tickerPage
		if err := json.Unmarshal(body, &p); err != nil {
			if page == 1 {
				return nil, fmt.Errorf("coingecko tickers %s: %w", exchangeID, &exchange.ParseError{Exchange: "coingecko", Err: err})
			}
			logger.Warn().Int("page", page).Str("kind", "parse").Err(err).Msg("ticker paging stopped")
			break
		}
		if len(p.Tickers) == 0 {
			break
		}
		exchange.DecodeRows("coingecko", p.Tickers, func(t ticker) {
			out = append(out, domain.RawTicker{
				ExchangeID: exchangeID,
				Base:       t.Base,
				Target:     t.Target,
				Last:       t.Last.Decimal(),
				Volume:     t.Volume.Decimal(),
				TradeURL:   strings.TrimSpace(t.TradeURL),
				CoinID:     t.CoinID,
			})
		})
		if page == 1 {
			logger.Debug().Int("tickers", len(p.Tickers)).Msg("first ticker page")
		}
	}
	logger.Info().Int("tickers", len(out)).Msg("catalog tickers loaded")
	return out, nil
}

var _ port.CatalogSource = (*Client)(nil)
