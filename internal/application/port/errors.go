package port

import (
	"context"
	"errors"
)

// 上游错误分类，基础设施层的具体错误类型通过 Unwrap/Is 匹配这些哨兵
var (
	ErrAuth               = errors.New("upstream authentication failed")
	ErrMissingCredentials = errors.New("credentials missing")
	ErrNoAssetSource      = errors.New("exchange has no asset metadata source")
	ErrMalformed          = errors.New("malformed upstream payload")
	ErrUpstreamStatus     = errors.New("upstream returned non-2xx status")
)

// ErrorKind 日志中的 kind 字段
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrMissingCredentials):
		return "credentials"
	case errors.Is(err, ErrRateLimited):
		return "rate_limit"
	case errors.Is(err, ErrOversized):
		return "oversized"
	case errors.Is(err, ErrMalformed):
		return "parse"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrUpstreamStatus):
		return "http"
	}
	return "transport"
}
