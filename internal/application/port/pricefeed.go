package port

import "context"

// TickerFeed 持续把某个交易所的全量现货行情写入 TickerCache。
// Run 阻塞直到 ctx 结束；返回非 nil 错误表示该数据源已无法继续。
type TickerFeed interface {
	Name() string
	Run(ctx context.Context) error
}
