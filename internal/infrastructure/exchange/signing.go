package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tokendict/internal/application/port"
)

// ErrMissingCredentials 签名所需的凭证未配置
var ErrMissingCredentials = port.ErrMissingCredentials

// Request 待签名的请求描述
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

// Verb 请求方法，默认 GET
func (r Request) Verb() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

// RequestPath path + ?query（OKX 签名串使用）
func (r Request) RequestPath() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}

// Signed 签名结果：需要附加的请求头，以及（部分交易所）签名后的完整 query
type Signed struct {
	Header http.Header
	Query  string
}

// Signer turns credentials and a request shape into transport-ready auth
// material. Implementations never retry and never send anything.
type Signer interface {
	SignAt(creds port.Credentials, req Request, now time.Time) (Signed, error)
}

// Sign 使用当前时间签名；签名后应立即发送请求
func Sign(s Signer, creds port.Credentials, req Request) (Signed, error) {
	return s.SignAt(creds, req, time.Now())
}

// NewSignedRequest 签名并构造 http.Request
func NewSignedRequest(ctx context.Context, s Signer, creds port.Credentials, baseURL string, req Request) (*http.Request, error) {
	signed, err := Sign(s, creds, req)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(baseURL, "/") + req.Path
	query := signed.Query
	if query == "" && len(req.Query) > 0 {
		query = req.Query.Encode()
	}
	if query != "" {
		endpoint += "?" + query
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Verb(), endpoint, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range signed.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

// HMACHex HMAC-SHA256，十六进制小写
func HMACHex(secret, data string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// HMACBase64 HMAC-SHA256，标准 base64
func HMACBase64(secret, data string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
