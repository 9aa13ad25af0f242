package svc

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"tokendict/internal/application/container"
	"tokendict/internal/application/port"
	"tokendict/internal/application/service"
	"tokendict/internal/application/usecase/pipeline"
	"tokendict/internal/infrastructure/coingecko"
	"tokendict/internal/infrastructure/config"
	storage "tokendict/internal/infrastructure/container"
	"tokendict/internal/infrastructure/exchange"
	_ "tokendict/internal/infrastructure/exchange/venues"
	"tokendict/internal/infrastructure/metrics"
	"tokendict/internal/infrastructure/okxdex"
	"tokendict/internal/infrastructure/poller"
	"tokendict/internal/infrastructure/tickercache"
	"tokendict/internal/infrastructure/websocket"
	"tokendict/internal/interfaces/httpapi"
)

type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	// 基础设施层（第一层初始化）
	storage  *storage.Container
	adapters *exchange.Set
	catalog  *coingecko.Client
	dex      *okxdex.Client
	cache    port.TickerCache
	metrics  *metrics.Metrics
	feeds    *websocket.Manager

	// 应用层
	app      *container.Container
	pipeline *pipeline.Service

	// 资源管理
	closerChain []func() error
}

// New 创建并初始化 ServiceContext，所有依赖初始化都在这里完成
func New(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	sc := &ServiceContext{
		Ctx:         ctx,
		Config:      cfg,
		closerChain: make([]func() error, 0),
	}

	if err := sc.initializeComponents(); err != nil {
		// 清理已初始化的资源
		_ = sc.Close()
		return nil, err
	}
	return sc, nil
}

// initializeComponents 按依赖顺序初始化
func (sc *ServiceContext) initializeComponents() error {
	sc.metrics = metrics.New("tokendict", nil)

	// 0. 存储层
	st, err := storage.New(sc.Ctx, sc.Config)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageInitFailed, err)
	}
	sc.storage = st
	sc.closerChain = append(sc.closerChain, st.Close)

	// 1. 交易所
	if err := sc.initExchanges(); err != nil {
		return err
	}

	// 2. 行情缓存
	sc.cache = st.TickerCache()
	if sc.cache == nil {
		sc.cache = tickercache.NewMemory()
	}

	// 3. 外部数据源
	sc.initSources()

	// 4. 行情源
	sc.initFeeds()

	// 5. 应用层
	sc.app = container.New(container.Deps{
		Adapters:     sc.adapters,
		Catalog:      sc.catalog,
		Dex:          sc.dexSource(),
		Cache:        sc.cache,
		Publisher:    st.Publisher(),
		Loader:       st.Loader(),
		Metrics:      sc.metrics,
		Credentials:  sc.credentials(),
		Fetch:        assetFetcher(sc.Config.Pipeline.AssetTimeout.Duration),
		AssetTimeout: sc.Config.Pipeline.AssetTimeout.Duration,

		OverlayPublisher: st.OverlayPublisher(),
		DexOptions: service.DexEnricherOptions{
			BatchSize: sc.Config.Dex.BatchSize,
			Cooldown:  sc.Config.Dex.Cooldown.Duration,
		},
	})
	sc.pipeline = sc.app.Pipeline(pipeline.Options{
		SlowInterval:      sc.Config.Pipeline.SlowInterval.Duration,
		WarmUp:            sc.Config.Pipeline.WarmUp.Duration,
		FastInterval:      sc.Config.Pipeline.FastInterval.Duration,
		TickerConcurrency: sc.Config.Pipeline.TickerConcurrency,
	})

	log.Info().
		Int("exchanges", len(sc.adapters.All())).
		Int("publishers", st.Publishers()).
		Int("feeds", sc.feeds.Len()).
		Bool("dex", sc.dex != nil).
		Msg("all components initialized")
	return nil
}

func (sc *ServiceContext) initExchanges() error {
	enabled := sc.Config.EnabledExchanges(exchange.Registered())
	if len(enabled) == 0 {
		return ErrNoExchangesEnabled
	}

	opts := make(map[string]exchange.Options, len(enabled))
	for _, name := range enabled {
		ex := sc.Config.Exchange(name)
		opts[name] = exchange.Options{AssetBaseURL: ex.AssetBaseURL, TickerURL: ex.TickerURL}
	}
	sc.adapters = exchange.NewSet(enabled, opts)

	log.Info().Strs("exchanges", enabled).Msg("exchange adapters initialized")
	return nil
}

func (sc *ServiceContext) initSources() {
	cat := sc.Config.Catalog
	sc.catalog = coingecko.New(coingecko.Config{
		BaseURL:           cat.BaseURL,
		APIKey:            cat.APIKey,
		RequestsPerMinute: cat.RequestsPerMinute,
		Timeout:           cat.Timeout.Duration,
		MaxPages:          cat.MaxPages,
	})

	dex := sc.Config.Dex
	if !dex.Enabled {
		log.Warn().Msg("dex enrichment disabled by config")
		return
	}
	sc.dex = okxdex.New(okxdex.Config{
		BaseURL: dex.BaseURL,
		Credentials: port.Credentials{
			APIKey:     dex.APIKey,
			APISecret:  dex.APISecret,
			Passphrase: dex.Passphrase,
		},
		Timeout: dex.Timeout.Duration,
	})
}

// initFeeds 每个交易所一个行情源：有 websocket 工厂且开启时用推送，否则 HTTP 轮询
func (sc *ServiceContext) initFeeds() {
	sc.feeds = websocket.NewManager()
	pc := sc.Config.Poller
	if !pc.Enabled {
		log.Warn().Msg("ticker pollers disabled by config, live overlay will find no data")
		return
	}

	var wsVenues []string
	urls := make(map[string]string)
	if pc.Websocket {
		for _, a := range sc.adapters.All() {
			wsVenues = append(wsVenues, a.Name())
			urls[a.Name()] = sc.Config.Exchange(a.Name()).WsURL
		}
	}
	sc.feeds.AddWebsocketFeeds(wsVenues, urls, sc.cache, pc.TTL.Duration)

	pcfg := poller.Config{
		Interval: pc.Interval.Duration,
		Timeout:  pc.Timeout.Duration,
		TTL:      pc.TTL.Duration,
	}
	for _, a := range sc.adapters.All() {
		if pc.Websocket && hasWebsocket(a.Name()) {
			continue
		}
		sc.feeds.Add(poller.New(a, sc.cache, sc.metrics, pcfg))
	}
}

// dexSource 避免把 nil *okxdex.Client 包装成非 nil 接口
func (sc *ServiceContext) dexSource() port.DexPriceSource {
	if sc.dex == nil {
		return nil
	}
	return sc.dex
}

// credentials 以适配器 Name() 为 key
func (sc *ServiceContext) credentials() map[string]port.Credentials {
	out := make(map[string]port.Credentials)
	for _, a := range sc.adapters.All() {
		ex := sc.Config.Exchange(a.Name())
		c := port.Credentials{
			APIKey:     strings.TrimSpace(ex.APIKey),
			APISecret:  strings.TrimSpace(ex.APISecret),
			Passphrase: strings.TrimSpace(ex.Passphrase),
		}
		if c.Empty() {
			if a.SignedAssets() {
				log.Warn().Str("exchange", a.Name()).Str("kind", "credentials").Msg("no api credentials, asset metadata will be skipped")
			}
			continue
		}
		out[a.Name()] = c
	}
	return out
}

// Pipeline 对账流水线
func (sc *ServiceContext) Pipeline() *pipeline.Service {
	return sc.pipeline
}

// Feeds 行情源管理器
func (sc *ServiceContext) Feeds() *websocket.Manager {
	return sc.feeds
}

// HTTPServer 查询接口；未启用时返回 nil
func (sc *ServiceContext) HTTPServer() *httpapi.Server {
	if !sc.Config.HTTP.Enabled {
		return nil
	}
	return httpapi.New(sc.Config.HTTP.Addr, sc.pipeline.Store(), sc.cache, sc.metrics.Handler())
}

// Metrics prometheus 指标
func (sc *ServiceContext) Metrics() *metrics.Metrics {
	return sc.metrics
}

// Close 按相反的顺序关闭所有资源
func (sc *ServiceContext) Close() error {
	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if err := sc.closerChain[i](); err != nil {
			log.Error().Err(err).Msg("error closing resource")
		}
	}
	sc.closerChain = nil
	return nil
}
