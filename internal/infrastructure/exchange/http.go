package exchange

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tokendict/internal/application/port"
)

// ErrAuth 上游返回认证失败（签名错误、时间戳过期、key 无效）
var ErrAuth = port.ErrAuth

// ErrNoAssetSource 该交易所没有资产元数据接口
var ErrNoAssetSource = port.ErrNoAssetSource

// HTTPError 非 2xx 响应
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("http %d: %s", e.Status, body)
}

// Unwrap lets errors.Is(err, ErrAuth) match 401/403 responses.
func (e *HTTPError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrAuth
	}
	return port.ErrUpstreamStatus
}

// NewHTTPClient 默认 HTTP 客户端
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Do 发送请求并读取完整响应体；非 2xx 返回 *HTTPError
func Do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// NewGet 构造无签名 GET 请求
func NewGet(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// JoinURL 拼接 base 与 path
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// ErrorKind classifies an upstream error for logging.
func ErrorKind(err error) string {
	var aerr *APIError
	if errors.As(err, &aerr) && !errors.Is(err, ErrAuth) {
		return "api"
	}
	return port.ErrorKind(err)
}
