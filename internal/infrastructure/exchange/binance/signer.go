package binance

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

// Signer Binance SAPI 签名: query 追加 timestamp/recvWindow，
// signature = hex(HMAC-SHA256(query, secret))，header X-MBX-APIKEY
type Signer struct {
	RecvWindow string
}

func (s Signer) SignAt(creds port.Credentials, req exchange.Request, now time.Time) (exchange.Signed, error) {
	if creds.Empty() {
		return exchange.Signed{}, exchange.ErrMissingCredentials
	}
	params := url.Values{}
	for k, vs := range req.Query {
		params[k] = append([]string(nil), vs...)
	}
	params.Set("timestamp", strconv.FormatInt(now.UnixMilli(), 10))
	if params.Get("recvWindow") == "" {
		recv := s.RecvWindow
		if recv == "" {
			recv = "30000"
		}
		params.Set("recvWindow", recv)
	}

	query := params.Encode()
	h := http.Header{}
	h.Set("X-MBX-APIKEY", creds.APIKey)
	return exchange.Signed{
		Header: h,
		Query:  query + "&signature=" + exchange.HMACHex(creds.APISecret, query),
	}, nil
}

var _ exchange.Signer = Signer{}
