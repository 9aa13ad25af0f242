package svc

import (
	"net/http"
	"time"

	"tokendict/internal/application/service"
	"tokendict/internal/infrastructure/exchange"
	"tokendict/internal/infrastructure/pricefeed"
)

// assetFetcher 资产元数据请求共用一个 HTTP 客户端
func assetFetcher(timeout time.Duration) service.Fetcher {
	client := exchange.NewHTTPClient(timeout)
	return func(req *http.Request) ([]byte, error) {
		return exchange.Do(client, req)
	}
}

func hasWebsocket(venue string) bool {
	_, ok := pricefeed.Get(venue)
	return ok
}
