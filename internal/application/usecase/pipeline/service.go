package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"tokendict/internal/application/port"
	"tokendict/internal/application/service"
	"tokendict/internal/domain"
)

// ErrCatalogUnavailable 币种目录拉取失败，本轮跳过，保留上一份快照
var ErrCatalogUnavailable = errors.New("catalog coin list unavailable")

// AssetSource 构建本轮资产目录
type AssetSource interface {
	Build(ctx context.Context) (domain.AssetDirectory, []service.AssetFetchReport)
}

// ServiceDeps 流水线依赖；Dex、Publisher、OverlayPublisher、Loader 可为 nil
type ServiceDeps struct {
	Catalog    port.CatalogSource
	Adapters   port.AdapterSet
	Assets     AssetSource
	Reconciler *service.Reconciler
	Dex        *service.DexEnricher
	Overlay    *service.PriceOverlay
	Publisher  port.Publisher
	Loader     port.SnapshotLoader
	Metrics    port.Metrics
	Store      *Store

	// OverlayPublisher 只接收快速覆盖的结果，对账结果仍走 Publisher
	OverlayPublisher port.Publisher
}

// Options 调度参数
type Options struct {
	SlowInterval      time.Duration // 对账周期，默认 1m
	WarmUp            time.Duration // 首轮对账前等待，默认 5s
	FastInterval      time.Duration // 价格覆盖周期，默认 3s
	TickerConcurrency int           // 并发拉取行情的交易所数，默认 4
}

func (o *Options) applyDefaults() {
	if o.SlowInterval <= 0 {
		o.SlowInterval = time.Minute
	}
	if o.WarmUp <= 0 {
		o.WarmUp = 5 * time.Second
	}
	if o.FastInterval <= 0 {
		o.FastInterval = 3 * time.Second
	}
	if o.TickerConcurrency <= 0 {
		o.TickerConcurrency = 4
	}
}

// Service 慢速对账 + 快速价格覆盖
type Service struct {
	deps ServiceDeps
	opts Options

	cycleMu sync.Mutex // 对账轮次串行；backoff 只在持锁时读写
	backoff service.Backoff
}

func NewService(deps ServiceDeps, opts Options) *Service {
	opts.applyDefaults()
	if deps.Store == nil {
		deps.Store = NewStore()
	}
	if deps.Metrics == nil {
		deps.Metrics = port.NopMetrics{}
	}
	return &Service{deps: deps, opts: opts, backoff: service.DefaultBackoff()}
}

// Store 当前快照存储，供查询接口读取
func (s *Service) Store() *Store {
	return s.deps.Store
}

// Run 启动两个循环，直到 ctx 取消
func (s *Service) Run(ctx context.Context) error {
	s.WarmStart(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.slowLoop(gctx) })
	g.Go(func() error { return s.fastLoop(gctx) })

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// RunOnce 一轮对账加一次价格覆盖
func (s *Service) RunOnce(ctx context.Context) error {
	if err := s.Cycle(ctx); err != nil {
		return err
	}
	s.Refresh(ctx)
	return nil
}

func (s *Service) slowLoop(ctx context.Context) error {
	timer := time.NewTimer(s.opts.WarmUp)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			if err := s.Cycle(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("reconciliation cycle failed, previous dictionary kept")
			}
			timer.Reset(s.opts.SlowInterval)
		}
	}
}

func (s *Service) fastLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.FastInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// WarmStart 从上次发布的 dict 恢复快照，仅在尚无快照时生效
func (s *Service) WarmStart(ctx context.Context) {
	if s.deps.Loader == nil || s.deps.Store.Load() != nil {
		return
	}
	entries, err := s.deps.Loader.LoadView(ctx, domain.ViewAll)
	if err != nil {
		log.Warn().Err(err).Msg("warm start skipped")
		return
	}
	if len(entries) == 0 {
		return
	}
	dir := service.Partition(entries)
	dir.CycleID = "warm"
	dir.BuiltAt = time.Now()
	if s.deps.Store.CompareAndSwap(nil, dir) {
		s.recordViews(dir)
		log.Info().Int("tokens", len(dir.All)).Msg("warm start from last published dictionary")
	}
}

type cycleInputs struct {
	coins   []domain.CatalogEntry
	tickers []domain.RawTicker
	assets  domain.AssetDirectory
	reports []service.AssetFetchReport
}

// Cycle 执行一轮完整对账并发布。币种目录失败时返回 ErrCatalogUnavailable，
// 快照保持不变。
func (s *Service) Cycle(ctx context.Context) error {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	id := uuid.NewString()
	start := time.Now()
	logger := log.With().Str("cycle", id).Logger()
	logger.Info().Msg("reconciliation cycle started")

	in, err := s.load(ctx)
	if err != nil {
		outcome := "catalog_unavailable"
		if ctx.Err() != nil {
			outcome = "canceled"
		}
		s.deps.Metrics.ObserveCycle(outcome, time.Since(start))
		return err
	}
	for _, r := range in.reports {
		s.deps.Metrics.SetAssetRecords(r.Exchange, r.Records)
	}

	entries, stats := s.deps.Reconciler.Reconcile(in.tickers, in.coins, in.assets)
	entries = service.ResolveChains(entries)

	if prev := s.deps.Store.Load(); prev != nil {
		entries = service.CarryDex(entries, prev.All)
	}

	var blob []domain.DexBlobItem
	if s.deps.Dex != nil {
		var res service.EnrichResult
		res, s.backoff = s.deps.Dex.Enrich(ctx, entries, s.backoff)
		var updated int
		entries, updated = service.ApplyDex(entries, res.Quotes)
		blob = res.Blob
		s.recordDex(res)
		logger.Info().
			Int("pairs", res.Pairs).
			Int("batches", res.Batches).
			Int("updated", updated).
			Int("not_updated", len(res.NotUpdated)).
			Dur("delay", s.backoff.Delay).
			Msg("dex enrichment done")
	}

	if ctx.Err() != nil {
		s.deps.Metrics.ObserveCycle("canceled", time.Since(start))
		return ctx.Err()
	}

	dir := service.Partition(entries)
	dir.CycleID = id
	dir.BuiltAt = time.Now()
	s.deps.Store.Swap(dir)
	if s.deps.Dex != nil {
		s.deps.Store.SetDexBlob(blob)
	}
	s.recordViews(dir)

	s.publish(ctx, s.deps.Publisher, dir, blob)

	elapsed := time.Since(start)
	s.deps.Metrics.ObserveCycle("ok", elapsed)
	logger.Info().
		Int("coins", stats.Coins).
		Int("tickers", len(in.tickers)).
		Int("asset_contracts", in.assets.Len()).
		Int("confirmed", stats.Confirmed).
		Int("defaulted", stats.Defaulted).
		Int("tokens", len(dir.All)).
		Int("usdt", len(dir.USDT)).
		Int("sol_eth", len(dir.SolEth)).
		Int("usdc", len(dir.USDC)).
		Dur("elapsed", elapsed).
		Msg("reconciliation cycle finished")
	return nil
}

// load 并发拉取币种目录、各交易所行情与资产目录。只有币种目录失败是致命的。
func (s *Service) load(ctx context.Context) (cycleInputs, error) {
	var in cycleInputs

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		coins, err := s.deps.Catalog.Coins(gctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
		}
		in.coins = coins
		return nil
	})
	g.Go(func() error {
		in.tickers = s.loadTickers(gctx)
		return nil
	})
	if s.deps.Assets != nil {
		g.Go(func() error {
			in.assets, in.reports = s.deps.Assets.Build(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return cycleInputs{}, err
	}
	if in.assets == nil {
		in.assets = domain.NewAssetDirectory()
	}
	return in, nil
}

func (s *Service) loadTickers(ctx context.Context) []domain.RawTicker {
	ids := catalogIDs(s.deps.Adapters)
	results := make([][]domain.RawTicker, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.TickerConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			ts, err := s.deps.Catalog.Tickers(gctx, id)
			if err != nil {
				log.Warn().Str("exchange", id).Str("kind", port.ErrorKind(err)).Err(err).Msg("catalog tickers unavailable this cycle")
				return nil
			}
			results[i] = ts
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.RawTicker
	for _, ts := range results {
		out = append(out, ts...)
	}
	return out
}

func catalogIDs(set port.AdapterSet) []string {
	if set == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, a := range set.All() {
		id := a.CatalogID()
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Refresh 用最新原始行情覆盖当前快照的价格字段
func (s *Service) Refresh(ctx context.Context) bool {
	if s.deps.Overlay == nil {
		return false
	}
	cur := s.deps.Store.Load()
	if cur == nil {
		return false
	}
	next, stats := s.deps.Overlay.Apply(ctx, cur)
	if !s.deps.Store.CompareAndSwap(cur, next) {
		log.Debug().Msg("price overlay superseded by a newer dictionary")
		return false
	}
	s.deps.Metrics.AddOverlayMatched(stats.Matched)
	s.publish(ctx, s.deps.OverlayPublisher, next, nil)
	return true
}

func (s *Service) publish(ctx context.Context, sink port.Publisher, dir *domain.Directory, blob []domain.DexBlobItem) {
	if sink == nil {
		return
	}
	if err := sink.PublishDirectory(ctx, dir); err != nil {
		log.Warn().Str("cycle", dir.CycleID).Err(err).Msg("publish dictionary failed")
	}
	if blob == nil {
		return
	}
	if err := sink.PublishDexBlob(ctx, blob); err != nil {
		log.Warn().Str("cycle", dir.CycleID).Err(err).Msg("publish dex blob failed")
	}
}

func (s *Service) recordViews(dir *domain.Directory) {
	for _, name := range domain.Views() {
		v, _ := dir.View(name)
		s.deps.Metrics.SetViewSize(name, len(v))
	}
}

func (s *Service) recordDex(res service.EnrichResult) {
	m := s.deps.Metrics
	m.AddDexBatches("ok", res.Batches-res.Failed)
	m.AddDexBatches("failed", res.Failed)
	m.AddDexBatches("rate_limited", res.RateLimited)
	m.AddDexBatches("oversized", res.Oversized)
	m.SetDexDelay(s.backoff.Delay)
}
