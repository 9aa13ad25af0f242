package exchange

import "strings"

// 交易对拼接规则
const (
	SepNone       = ""
	SepUnderscore = "_"
	SepHyphen     = "-"
)

// ComposeSymbol 拼接 base + sep + quote，统一大写
// 例: (BTC, USDT, "") -> BTCUSDT, (BTC, USDT, "_") -> BTC_USDT
func ComposeSymbol(base, quote, sep string) string {
	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if base == "" || quote == "" {
		return ""
	}
	return base + sep + quote
}

// NormalizeSymbol 行情中的交易对统一为大写，便于大小写不敏感匹配
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
