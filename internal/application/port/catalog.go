package port

import (
	"context"

	"tokendict/internal/domain"
)

// CatalogSource 币种目录与交易所行情来源
type CatalogSource interface {
	// Coins 完整币种列表（含各链合约地址）
	Coins(ctx context.Context) ([]domain.CatalogEntry, error)
	// Tickers 某交易所的全部行情，内部分页
	Tickers(ctx context.Context, exchangeID string) ([]domain.RawTicker, error)
}
