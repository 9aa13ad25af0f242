package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Field is the outcome of extracting one numeric field from an upstream
// payload: either a value, or absent with a reason.
type Field struct {
	Value  decimal.Decimal
	OK     bool
	Reason string
}

// NotProvided 交易所本身不提供该字段
const NotProvided = "not provided"

// Present 有值
func Present(v decimal.Decimal) Field {
	return Field{Value: v, OK: true}
}

// Absent 无值及原因
func Absent(reason string) Field {
	return Field{Reason: reason}
}

// ParseField parses s as a decimal. Empty input is absent ("missing"),
// unparsable input is absent ("invalid").
func ParseField(s string) Field {
	s = strings.TrimSpace(s)
	if s == "" {
		return Absent("missing")
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Absent("invalid: " + s)
	}
	return Present(v)
}

// TickerQuote 单条原始行情中提取出的价格字段
type TickerQuote struct {
	Last     Field
	Volume   Field
	Turnover Field
}

// Usable reports whether the quote can be applied: the last price parsed and
// every field the exchange does provide parsed too.
func (q TickerQuote) Usable() bool {
	if !q.Last.OK {
		return false
	}
	for _, f := range []Field{q.Volume, q.Turnover} {
		if !f.OK && f.Reason != NotProvided {
			return false
		}
	}
	return true
}
