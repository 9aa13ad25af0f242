package port

import (
	"context"
	"errors"
)

// DexPair 一次 DEX 查询的 (chainIndex, contract)
type DexPair struct {
	ChainIndex string
	Contract   string
	Chain      string
}

// DexRow DEX 返回的单条数据，数值为字符串
type DexRow struct {
	ChainIndex string
	Contract   string
	Price      string
	Liquidity  string
	MarketCap  string
}

// DexPriceSource 批量 DEX 价格查询
type DexPriceSource interface {
	PriceInfo(ctx context.Context, batch []DexPair) ([]DexRow, error)
}

// DEX 上游的可区分错误
var (
	// ErrRateLimited 触发限频，应增大批次间隔
	ErrRateLimited = errors.New("dex source rate limited")
	// ErrOversized 请求/响应过大被拒绝，需要调小批次
	ErrOversized = errors.New("dex batch rejected as oversized")
)
