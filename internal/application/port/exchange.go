package port

import (
	"context"
	"net/http"
	"strings"

	"tokendict/internal/domain"
)

// Credentials API 凭证，由环境变量注入
type Credentials struct {
	APIKey     string
	APISecret  string
	Passphrase string
}

// Empty 未配置 key 或 secret
func (c Credentials) Empty() bool {
	return strings.TrimSpace(c.APIKey) == "" || strings.TrimSpace(c.APISecret) == ""
}

// ExchangeAdapter 单个交易所的统一能力：资产元数据解析、原始行情解析、交易对拼接
type ExchangeAdapter interface {
	// Name 资产目录中的交易所 key，例如 binance / bybit / okex / mxc / huobi
	Name() string
	// CatalogID 行情聚合源中的交易所 id，例如 bybit_spot / okex / mxc
	CatalogID() string
	// Aliases ExchangeEntry.Name 可能出现的其它写法
	Aliases() []string
	// TickerKey 行情缓存中的 key，例如 binance_spot
	TickerKey() string
	// TickerURL 全量现货行情地址
	TickerURL() string
	// SignedAssets 资产接口是否需要签名
	SignedAssets() bool

	// AssetRequest 构造（并签名）资产元数据请求；无资产源时返回 ErrNoAssetSource
	AssetRequest(ctx context.Context, creds Credentials) (*http.Request, error)
	// ParseAssetMetadata 解析资产接口响应，跳过无法解析的条目
	ParseAssetMetadata(body []byte) ([]domain.AssetListing, error)
	// ParseRawTicker 解析行情缓存中的原始 JSON，key 为大写交易对
	ParseRawTicker(body []byte) (map[string]domain.TickerQuote, error)
	// ComposeSymbol 按交易所规则拼接 base/quote
	ComposeSymbol(base, quote string) string
}

// AdapterSet 按名称解析交易所适配器
type AdapterSet interface {
	All() []ExchangeAdapter
	Resolve(name string) (ExchangeAdapter, bool)
	// NormalizeName maps a catalog id or alias to the adapter's asset key;
	// unknown names are lower-cased.
	NormalizeName(name string) string
}
