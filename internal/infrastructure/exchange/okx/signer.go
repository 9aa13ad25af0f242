package okx

import (
	"net/http"
	"strconv"
	"time"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

// TimestampFormat 签名时间戳格式
type TimestampFormat int

const (
	// TimestampISO 2006-01-02T15:04:05.000Z，CEX 接口使用
	TimestampISO TimestampFormat = iota
	// TimestampUnix 秒，保留三位小数，DEX 接口使用
	TimestampUnix
)

// Signer OKX: base64(HMAC-SHA256(timestamp + method + requestPath + body))
type Signer struct {
	Format TimestampFormat
}

func (s Signer) SignAt(creds port.Credentials, req exchange.Request, now time.Time) (exchange.Signed, error) {
	if creds.Empty() || creds.Passphrase == "" {
		return exchange.Signed{}, exchange.ErrMissingCredentials
	}
	ts := s.timestamp(now)

	h := http.Header{}
	h.Set("OK-ACCESS-KEY", creds.APIKey)
	h.Set("OK-ACCESS-SIGN", exchange.HMACBase64(creds.APISecret, ts+req.Verb()+req.RequestPath()+req.Body))
	h.Set("OK-ACCESS-TIMESTAMP", ts)
	h.Set("OK-ACCESS-PASSPHRASE", creds.Passphrase)
	return exchange.Signed{Header: h, Query: req.Query.Encode()}, nil
}

func (s Signer) timestamp(now time.Time) string {
	if s.Format == TimestampUnix {
		return strconv.FormatFloat(float64(now.UnixMilli())/1000, 'f', 3, 64)
	}
	return now.UTC().Format("2006-01-02T15:04:05.000Z")
}

var _ exchange.Signer = Signer{}
