package container

import (
	"time"

	"tokendict/internal/application/port"
	"tokendict/internal/application/service"
	"tokendict/internal/application/usecase/pipeline"
)

// Deps 应用层所需的端口实现，由 infrastructure 层注入
type Deps struct {
	Adapters  port.AdapterSet
	Catalog   port.CatalogSource
	Dex       port.DexPriceSource // nil 时不做 DEX 富化
	Cache     port.TickerCache
	Publisher port.Publisher
	Loader    port.SnapshotLoader
	Metrics   port.Metrics

	// OverlayPublisher 接收每次价格覆盖结果；nil 时覆盖结果只留在内存快照
	OverlayPublisher port.Publisher

	Credentials  map[string]port.Credentials
	Fetch        service.Fetcher
	AssetTimeout time.Duration
	DexOptions   service.DexEnricherOptions
}

// Container 按需构造应用服务，同一实例只构造一次
type Container struct {
	deps Deps

	reconciler *service.Reconciler
	overlay    *service.PriceOverlay
	dex        *service.DexEnricher
	assets     *service.AssetDirectoryBuilder
	store      *pipeline.Store
}

func New(deps Deps) *Container {
	return &Container{deps: deps}
}

func (c *Container) Reconciler() *service.Reconciler {
	if c.reconciler == nil {
		c.reconciler = service.NewReconciler(c.deps.Adapters)
	}
	return c.reconciler
}

func (c *Container) PriceOverlay() *service.PriceOverlay {
	if c.overlay == nil {
		c.overlay = service.NewPriceOverlay(c.deps.Adapters, c.deps.Cache)
	}
	return c.overlay
}

// DexEnricher 未配置 DEX 源时返回 nil
func (c *Container) DexEnricher() *service.DexEnricher {
	if c.dex == nil && c.deps.Dex != nil {
		c.dex = service.NewDexEnricher(c.deps.Dex, c.deps.DexOptions)
	}
	return c.dex
}

func (c *Container) AssetBuilder() *service.AssetDirectoryBuilder {
	if c.assets == nil {
		c.assets = service.NewAssetDirectoryBuilder(c.deps.Adapters, c.deps.Credentials, c.deps.Fetch, c.deps.AssetTimeout)
	}
	return c.assets
}

func (c *Container) Store() *pipeline.Store {
	if c.store == nil {
		c.store = pipeline.NewStore()
	}
	return c.store
}

// Pipeline 组装流水线
func (c *Container) Pipeline(opts pipeline.Options) *pipeline.Service {
	deps := pipeline.ServiceDeps{
		Catalog:    c.deps.Catalog,
		Adapters:   c.deps.Adapters,
		Assets:     c.AssetBuilder(),
		Reconciler: c.Reconciler(),
		Dex:        c.DexEnricher(),
		Overlay:    c.PriceOverlay(),
		Publisher:  c.deps.Publisher,
		Loader:     c.deps.Loader,
		Metrics:    c.deps.Metrics,
		Store:      c.Store(),

		OverlayPublisher: c.deps.OverlayPublisher,
	}
	return pipeline.NewService(deps, opts)
}
