package exchange

import (
	"context"
	"net/http"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
)

// Venue holds the static identity shared by every adapter. Venue packages
// embed it and add their own parsers.
type Venue struct {
	ID          string
	Catalog     string
	AliasNames  []string
	CacheKey    string
	Ticker      string
	Separator   string
	AssetSigned bool
}

func (v Venue) Name() string       { return v.ID }
func (v Venue) TickerKey() string  { return v.CacheKey }
func (v Venue) TickerURL() string  { return v.Ticker }
func (v Venue) SignedAssets() bool { return v.AssetSigned }

func (v Venue) CatalogID() string {
	if v.Catalog == "" {
		return v.ID
	}
	return v.Catalog
}

func (v Venue) Aliases() []string {
	out := make([]string, len(v.AliasNames))
	copy(out, v.AliasNames)
	return out
}

// ComposeSymbol 按交易所分隔符拼接
func (v Venue) ComposeSymbol(base, quote string) string {
	return ComposeSymbol(base, quote, v.Separator)
}

// WithTicker 覆盖行情地址
func (v Venue) WithTicker(url string) Venue {
	if url != "" {
		v.Ticker = url
	}
	return v
}

// NoAssets is embedded by venues that publish no asset metadata.
type NoAssets struct{}

func (NoAssets) AssetRequest(context.Context, port.Credentials) (*http.Request, error) {
	return nil, ErrNoAssetSource
}

func (NoAssets) ParseAssetMetadata([]byte) ([]domain.AssetListing, error) {
	return nil, ErrNoAssetSource
}

// OrDefault 返回非空的 override，否则返回默认值
func OrDefault(override, def string) string {
	if override != "" {
		return override
	}
	return def
}

// Listing 构造 AssetListing，合约为空时返回 false
func Listing(exchange, contract, chain string, dep, wd bool, fee Num) (domain.AssetListing, bool) {
	if contract == "" {
		return domain.AssetListing{}, false
	}
	return domain.AssetListing{
		Contract: contract,
		AssetRecord: domain.AssetRecord{
			Exchange:        exchange,
			SettlementChain: chain,
			DepositEnabled:  dep,
			WithdrawEnabled: wd,
			WithdrawFee:     fee.Decimal(),
		},
	}, true
}

// Quote 构造只有最新价的行情
func Quote(last Num) domain.TickerQuote {
	return domain.TickerQuote{
		Last:     last.Field(),
		Volume:   domain.Absent(domain.NotProvided),
		Turnover: domain.Absent(domain.NotProvided),
	}
}

// FullQuote 构造包含最新价、成交量、成交额的行情
func FullQuote(last, volume, turnover Num) domain.TickerQuote {
	return domain.TickerQuote{
		Last:     last.Field(),
		Volume:   volume.Field(),
		Turnover: turnover.Field(),
	}
}
