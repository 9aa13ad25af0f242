package mexc

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

// Signer MEXC v3: signature = hex(HMAC-SHA256(recvWindow=..&timestamp=..))
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
	params.Set("recvWindow", exchange.OrDefault(s.RecvWindow, "30000"))
	params.Set("timestamp", strconv.FormatInt(now.UnixMilli(), 10))

	query := params.Encode()
	h := http.Header{}
	h.Set("X-MEXC-APIKEY", creds.APIKey)
	return exchange.Signed{
		Header: h,
		Query:  query + "&signature=" + exchange.HMACHex(creds.APISecret, query),
	}, nil
}

var _ exchange.Signer = Signer{}
