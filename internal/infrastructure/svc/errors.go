package svc

import (
	"errors"

	"tokendict/internal/application/usecase/pipeline"
)

// ErrNoExchangesEnabled 错误：所有交易所都被关闭
var ErrNoExchangesEnabled = errors.New("no exchanges enabled")

// ErrStorageInitFailed 错误：存储初始化失败
var ErrStorageInitFailed = errors.New("storage initialization failed")

// ErrCatalogUnavailable 币种目录拉取失败，本轮对账放弃
var ErrCatalogUnavailable = pipeline.ErrCatalogUnavailable
