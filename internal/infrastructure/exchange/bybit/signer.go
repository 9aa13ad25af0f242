package bybit

import (
	"net/http"
	"strconv"
	"time"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

// Signer Bybit V5: hex(HMAC-SHA256(timestamp + apiKey + recvWindow + payload))
// payload 为 GET 的 query 或 POST 的 body
type Signer struct {
	RecvWindow string
}

func (s Signer) SignAt(creds port.Credentials, req exchange.Request, now time.Time) (exchange.Signed, error) {
	if creds.Empty() {
		return exchange.Signed{}, exchange.ErrMissingCredentials
	}
	recv := exchange.OrDefault(s.RecvWindow, "30000")
	ts := strconv.FormatInt(now.UnixMilli(), 10)

	query := req.Query.Encode()
	payload := query
	if req.Verb() != http.MethodGet {
		payload = req.Body
	}

	h := http.Header{}
	h.Set("X-BAPI-API-KEY", creds.APIKey)
	h.Set("X-BAPI-TIMESTAMP", ts)
	h.Set("X-BAPI-RECV-WINDOW", recv)
	h.Set("X-BAPI-SIGN-TYPE", "2")
	h.Set("X-BAPI-SIGN", exchange.HMACHex(creds.APISecret, ts+creds.APIKey+recv+payload))
	return exchange.Signed{Header: h, Query: query}, nil
}

var _ exchange.Signer = Signer{}
