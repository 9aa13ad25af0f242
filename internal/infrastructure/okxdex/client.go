// Package okxdex queries the OKX DEX market price endpoint in batches of
// (chainIndex, tokenContractAddress) pairs.
package okxdex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
	"tokendict/internal/infrastructure/exchange/okx"
)

const (
	DefaultBaseURL = "https://www.okx.com"
	Endpoint       = "/api/v6/dex/market/price-info"

	sourceName      = "okx_dex"
	codeRateLimited = "50011"
	oversizedMarker = "not stored due to its length"
)

// DEX 错误，供 errors.Is 判断
var (
	ErrRateLimited = port.ErrRateLimited
	ErrOversized   = port.ErrOversized
)

var authCodes = map[string]bool{"50102": true, "50105": true, "50111": true, "50113": true}

type Config struct {
	BaseURL     string
	Credentials port.Credentials
	Timeout     time.Duration // 默认 30s
}

type Client struct {
	http    *http.Client
	baseURL string
	creds   port.Credentials
	signer  okx.Signer
	now     func() time.Time
}

func New(cfg Config) *Client {
	return &Client{
		http:    exchange.NewHTTPClient(cfg.Timeout),
		baseURL: strings.TrimRight(exchange.OrDefault(cfg.BaseURL, DefaultBaseURL), "/"),
		creds:   cfg.Credentials,
		signer:  okx.Signer{Format: okx.TimestampUnix},
		now:     time.Now,
	}
}

type pairParam struct {
	ChainIndex           string `json:"chainIndex"`
	TokenContractAddress string `json:"tokenContractAddress"`
}

type envelope struct {
	Code string            `json:"code"`
	Msg  string            `json:"msg"`
	Data []json.RawMessage `json:"data"`
}

type priceRow struct {
	ChainIndex           string       `json:"chainIndex"`
	TokenContractAddress string       `json:"tokenContractAddress"`
	Price                exchange.Num `json:"price"`
	Liquidity            exchange.Num `json:"liquidity"`
	MarketCap            exchange.Num `json:"marketCap"`
}

// PriceInfo 一次请求一个批次；限频、过大、鉴权错误分别映射为
// ErrRateLimited、ErrOversized、ErrAuth。
func (c *Client) PriceInfo(ctx context.Context, batch []port.DexPair) ([]port.DexRow, error) {
	params := make([]pairParam, 0, len(batch))
	for _, p := range batch {
		params = append(params, pairParam{ChainIndex: p.ChainIndex, TokenContractAddress: p.Contract})
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	signed, err := c.signer.SignAt(c.creds, exchange.Request{Method: http.MethodPost, Path: Endpoint, Body: string(payload)}, c.now())
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	for k, vs := range signed.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := exchange.Do(c.http, req)
	if err != nil {
		var herr *exchange.HTTPError
		if errors.As(err, &herr) {
			if cerr := classify([]byte(herr.Body)); cerr != nil {
				return nil, cerr
			}
			if herr.Status == http.StatusTooManyRequests {
				return nil, fmt.Errorf("okx dex: %w: %v", ErrRateLimited, err)
			}
		}
		return nil, err
	}

	if err := classify(body); err != nil {
		return nil, err
	}
	var resp envelope
	if err := exchange.Decode(sourceName, body, &resp); err != nil {
		return nil, err
	}

	rows := make([]port.DexRow, 0, len(resp.Data))
	exchange.DecodeRows(sourceName, resp.Data, func(r priceRow) {
		if strings.TrimSpace(r.ChainIndex) == "" || strings.TrimSpace(r.TokenContractAddress) == "" {
			return
		}
		rows = append(rows, port.DexRow{
			ChainIndex: r.ChainIndex,
			Contract:   r.TokenContractAddress,
			Price:      r.Price.String(),
			Liquidity:  r.Liquidity.String(),
			MarketCap:  r.MarketCap.String(),
		})
	})
	return rows, nil
}

// classify 解析 code/msg；成功或无法解析时返回 nil
func classify(body []byte) error {
	var resp envelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	switch {
	case strings.Contains(resp.Msg, oversizedMarker):
		return fmt.Errorf("okx dex: %w: %s", ErrOversized, resp.Msg)
	case resp.Code == codeRateLimited:
		return fmt.Errorf("okx dex: %w: %s", ErrRateLimited, resp.Msg)
	case authCodes[resp.Code]:
		return fmt.Errorf("okx dex: code %s %s: %w", resp.Code, resp.Msg, port.ErrAuth)
	case resp.Code != "" && resp.Code != "0":
		return exchange.CheckCode(sourceName, resp.Code, resp.Msg, []string{"0"})
	}
	return nil
}

var _ port.DexPriceSource = (*Client)(nil)
