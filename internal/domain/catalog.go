package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// 允许的计价资产
const (
	QuoteUSDT = "USDT"
	QuoteUSDC = "USDC"
	QuoteETH  = "ETH"
	QuoteSOL  = "SOL"
)

// AllowedQuote 计价资产是否在允许集合 {USDT, USDC, ETH, SOL} 中
func AllowedQuote(quote string) bool {
	switch strings.ToUpper(strings.TrimSpace(quote)) {
	case QuoteUSDT, QuoteUSDC, QuoteETH, QuoteSOL:
		return true
	}
	return false
}

// RawTicker 行情聚合源返回的单条交易所行情，仅在一次对账中使用
type RawTicker struct {
	ExchangeID string
	Base       string
	Target     string
	Last       decimal.Decimal
	Volume     decimal.Decimal
	TradeURL   string
	CoinID     string
}

// CatalogEntry 币种目录条目: coin id -> symbol + {chain: contract}
type CatalogEntry struct {
	ID        string            `json:"id"`
	Symbol    string            `json:"symbol"`
	Name      string            `json:"name"`
	Platforms map[string]string `json:"platforms"`
}
