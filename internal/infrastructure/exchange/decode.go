package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
)

// ParseError 响应体整体无法解析
type ParseError struct {
	Exchange string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse response: %v", e.Exchange, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is matches port.ErrMalformed.
func (e *ParseError) Is(target error) bool { return target == port.ErrMalformed }

// Decode 反序列化，失败时包装为 ParseError
func Decode(exchange string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &ParseError{Exchange: exchange, Err: err}
	}
	return nil
}

// Num accepts a JSON number, a numeric string or null.
type Num struct {
	raw   string
	isSet bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Num) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = Num{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Num{raw: strings.TrimSpace(s), isSet: true}
		return nil
	}
	*n = Num{raw: string(b), isSet: true}
	return nil
}

// Field 转换为提取结果
func (n Num) Field() domain.Field {
	if !n.isSet {
		return domain.Absent("missing")
	}
	return domain.ParseField(n.raw)
}

// Decimal 解析失败或缺失时返回 0
func (n Num) Decimal() decimal.Decimal {
	f := n.Field()
	if !f.OK {
		return decimal.Zero
	}
	return f.Value
}

// String 原始文本
func (n Num) String() string { return n.raw }

// NewNum 构造（测试与 websocket 合成快照使用）
func NewNum(s string) Num { return Num{raw: s, isSet: true} }

// MarshalJSON 以字符串写回，保持上游格式
func (n Num) MarshalJSON() ([]byte, error) {
	if !n.isSet {
		return []byte("null"), nil
	}
	return json.Marshal(n.raw)
}

// Flag accepts true/false, "true"/"false", "1"/"0" and 1/0.
type Flag struct {
	Value bool
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = Flag{}
		return nil
	}
	v, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return fmt.Errorf("flag %q: %w", s, err)
	}
	*f = Flag{Value: v, Valid: true}
	return nil
}

// DecodeRows decodes each raw row into T independently and calls fn for the
// ones that decode. Skipped rows are logged at debug; the count is returned.
func DecodeRows[T any](exchange string, rows []json.RawMessage, fn func(T)) int {
	skipped := 0
	var first error
	for _, raw := range rows {
		var row T
		if err := json.Unmarshal(raw, &row); err != nil {
			if first == nil {
				first = err
			}
			skipped++
			continue
		}
		fn(row)
	}
	LogSkipped(exchange, skipped, first)
	return skipped
}

// LogSkipped 记录被跳过的行数，n 为 0 时不输出
func LogSkipped(exchange string, n int, err error) {
	if n == 0 {
		return
	}
	ev := log.Debug().Str("exchange", exchange).Str("kind", "parse").Int("skipped", n)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("rows skipped")
}

// APIError 响应体中的业务错误码
type APIError struct {
	Exchange string
	Code     string
	Msg      string
	auth     bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: code=%s msg=%s", e.Exchange, e.Code, e.Msg)
}

// Unwrap lets errors.Is(err, ErrAuth) match authentication codes.
func (e *APIError) Unwrap() error {
	if e.auth {
		return ErrAuth
	}
	return nil
}

// CheckCode returns nil when code is one of ok, otherwise an *APIError that
// unwraps to ErrAuth when code is listed in authCodes.
func CheckCode(exchange, code, msg string, ok []string, authCodes ...string) error {
	for _, c := range ok {
		if code == c {
			return nil
		}
	}
	e := &APIError{Exchange: exchange, Code: code, Msg: msg}
	for _, c := range authCodes {
		if code == c {
			e.auth = true
			break
		}
	}
	return e
}
