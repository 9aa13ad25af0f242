package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/application/port"
	"tokendict/internal/application/service"
	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
	"tokendict/internal/infrastructure/exchange/bybit"
	"tokendict/internal/infrastructure/exchange/gate"
)

type fakeCatalog struct {
	mu        sync.Mutex
	coins     []domain.CatalogEntry
	coinsErr  error
	tickers   map[string][]domain.RawTicker
	tickerErr map[string]error
}

func (f *fakeCatalog) Coins(context.Context) ([]domain.CatalogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.coins, f.coinsErr
}

func (f *fakeCatalog) Tickers(_ context.Context, id string) ([]domain.RawTicker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.tickerErr[id]; err != nil {
		return nil, err
	}
	return f.tickers[id], nil
}

func (f *fakeCatalog) failCoins(err error) {
	f.mu.Lock()
	f.coinsErr = err
	f.mu.Unlock()
}

type fakeAssets struct{ dir domain.AssetDirectory }

func (f fakeAssets) Build(context.Context) (domain.AssetDirectory, []service.AssetFetchReport) {
	return f.dir, []service.AssetFetchReport{{Exchange: "gate", Records: f.dir.Len()}}
}

type fakeDex struct {
	mu    sync.Mutex
	price string
	err   error
}

func (f *fakeDex) PriceInfo(_ context.Context, batch []port.DexPair) ([]port.DexRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	rows := make([]port.DexRow, 0, len(batch))
	for _, p := range batch {
		rows = append(rows, port.DexRow{ChainIndex: p.ChainIndex, Contract: p.Contract, Price: f.price, Liquidity: "100", MarketCap: "1000"})
	}
	return rows, nil
}

type fakePublisher struct {
	mu    sync.Mutex
	dirs  []*domain.Directory
	blobs [][]domain.DexBlobItem
}

func (p *fakePublisher) PublishDirectory(_ context.Context, dir *domain.Directory) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirs = append(p.dirs, dir)
	return nil
}

func (p *fakePublisher) PublishDexBlob(_ context.Context, items []domain.DexBlobItem) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blobs = append(p.blobs, items)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.dirs)
}

type memCache struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.blobs[key]
	return b, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, payload []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blobs[key] = payload
	return nil
}

type fakeLoader struct {
	entries []domain.TokenEntry
	err     error
}

func (l fakeLoader) LoadView(context.Context, string) ([]domain.TokenEntry, error) {
	return l.entries, l.err
}

type harness struct {
	svc     *Service
	catalog *fakeCatalog
	dex     *fakeDex
	pub     *fakePublisher
	overlay *fakePublisher
	cache   *memCache
}

func newHarness(t *testing.T, loader port.SnapshotLoader) *harness {
	t.Helper()
	set := exchange.NewSetOf(gate.New(exchange.Options{}), bybit.New(exchange.Options{}))

	assets := domain.NewAssetDirectory()
	assets.Put("0xAAA", domain.AssetRecord{Exchange: "gate", SettlementChain: "ETH", DepositEnabled: true, WithdrawEnabled: true})

	h := &harness{
		catalog: &fakeCatalog{
			coins: []domain.CatalogEntry{{ID: "tkx", Symbol: "tkx", Platforms: map[string]string{"ethereum": "0xAAA"}}},
			tickers: map[string][]domain.RawTicker{
				"gate": {{ExchangeID: "gate", Base: "TKX", Target: "USDT", Last: decimal.NewFromInt(1), CoinID: "tkx"}},
				"bybit_spot": {
					{ExchangeID: "bybit_spot", Base: "TKX", Target: "USDC", Last: decimal.NewFromInt(1), CoinID: "tkx"},
				},
			},
		},
		dex:     &fakeDex{price: "2"},
		pub:     &fakePublisher{},
		overlay: &fakePublisher{},
		cache:   &memCache{blobs: map[string][]byte{}},
	}
	h.svc = NewService(ServiceDeps{
		Catalog:    h.catalog,
		Adapters:   set,
		Assets:     fakeAssets{dir: assets},
		Reconciler: service.NewReconciler(set),
		Dex:        service.NewDexEnricher(h.dex, service.DexEnricherOptions{Cooldown: -1}),
		Overlay:    service.NewPriceOverlay(set, h.cache),
		Publisher:  h.pub,
		Loader:     loader,

		OverlayPublisher: h.overlay,
	}, Options{WarmUp: 10 * time.Millisecond, SlowInterval: time.Hour, FastInterval: 5 * time.Millisecond})
	return h
}

func TestCycleBuildsAndPublishes(t *testing.T) {
	h := newHarness(t, nil)
	require.Nil(t, h.svc.Store().Load())

	require.NoError(t, h.svc.Cycle(t.Context()))

	dir := h.svc.Store().Load()
	require.NotNil(t, dir)
	assert.NotEmpty(t, dir.CycleID)
	require.Len(t, dir.All, 1)
	tok := dir.All[0]
	assert.Equal(t, "TKX", tok.Symbol)
	assert.Equal(t, "ethereum", tok.Chain)
	assert.True(t, tok.DexPrice.Equal(decimal.NewFromInt(2)))
	require.Len(t, tok.Exchanges, 2)

	byName := map[string]domain.ExchangeEntry{}
	for _, ex := range tok.Exchanges {
		byName[ex.Name] = ex
	}
	assert.Equal(t, "ETH", byName["gate"].SettlementChain)
	assert.Equal(t, "ethereum", byName["bybit_spot"].SettlementChain, "无资产数据时按目录链放行")

	assert.Len(t, dir.USDT, 1)
	assert.Len(t, dir.USDC, 1)
	assert.Empty(t, dir.SolEth)

	blob, ok := h.svc.Store().DexBlob()
	require.True(t, ok)
	require.Len(t, blob, 1)
	assert.Equal(t, "2", blob[0].Price)

	assert.Equal(t, 1, h.pub.count())
	require.Len(t, h.pub.blobs, 1)
}

func TestCatalogFailureKeepsPreviousDirectory(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.svc.Cycle(t.Context()))
	prev := h.svc.Store().Load()

	h.catalog.failCoins(errors.New("http 503"))
	err := h.svc.Cycle(t.Context())
	require.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.Same(t, prev, h.svc.Store().Load())
	assert.Equal(t, 1, h.pub.count())
}

func TestTickerFailureIsTolerated(t *testing.T) {
	h := newHarness(t, nil)
	h.catalog.tickerErr = map[string]error{"bybit_spot": errors.New("timeout")}

	require.NoError(t, h.svc.Cycle(t.Context()))
	dir := h.svc.Store().Load()
	require.Len(t, dir.All, 1)
	require.Len(t, dir.All[0].Exchanges, 1)
	assert.Equal(t, "gate", dir.All[0].Exchanges[0].Name)
	assert.Empty(t, dir.USDC)
}

func TestDexFailureCarriesPreviousValues(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.svc.Cycle(t.Context()))

	h.dex.mu.Lock()
	h.dex.err = errors.New("upstream 500")
	h.dex.mu.Unlock()

	require.NoError(t, h.svc.Cycle(t.Context()))
	tok := h.svc.Store().Load().All[0]
	assert.True(t, tok.DexPrice.Equal(decimal.NewFromInt(2)))
	assert.True(t, tok.Liquidity.Equal(decimal.NewFromInt(100)))
}

func TestRefreshOverlaysLivePrices(t *testing.T) {
	h := newHarness(t, nil)
	assert.False(t, h.svc.Refresh(t.Context()), "无快照时不做覆盖")

	require.NoError(t, h.svc.Cycle(t.Context()))
	before := h.svc.Store().Load()
	h.cache.blobs["gate_spot"] = []byte(`[{"currency_pair":"TKX_USDT","last":"1.5","base_volume":"10","quote_volume":"15"}]`)

	require.True(t, h.svc.Refresh(t.Context()))
	after := h.svc.Store().Load()
	require.NotSame(t, before, after)
	assert.Equal(t, before.CycleID, after.CycleID)

	for _, ex := range after.All[0].Exchanges {
		if ex.Name == "gate" {
			assert.True(t, ex.Last.Equal(decimal.RequireFromString("1.5")))
			assert.True(t, ex.Turnover.Equal(decimal.NewFromInt(15)))
		} else {
			assert.True(t, ex.Last.Equal(decimal.NewFromInt(1)))
		}
	}
	for _, ex := range before.All[0].Exchanges {
		assert.True(t, ex.Last.Equal(decimal.NewFromInt(1)), "已发布快照不可修改")
	}
	assert.Equal(t, 1, h.pub.count(), "覆盖结果不写入对账发布端")
	require.Equal(t, 1, h.overlay.count())
	assert.Same(t, after, h.overlay.dirs[0])
	assert.Empty(t, h.overlay.blobs)
}

func TestRefreshWithoutOverlayPublisher(t *testing.T) {
	h := newHarness(t, nil)
	h.svc.deps.OverlayPublisher = nil
	require.NoError(t, h.svc.Cycle(t.Context()))
	h.cache.blobs["gate_spot"] = []byte(`[{"currency_pair":"TKX_USDT","last":"1.5","base_volume":"10","quote_volume":"15"}]`)

	require.True(t, h.svc.Refresh(t.Context()))
	assert.Equal(t, 1, h.pub.count())
	assert.Zero(t, h.overlay.count())
	v, ok := h.svc.Store().View(domain.ViewUSDT)
	require.True(t, ok)
	assert.True(t, v[0].Exchanges[0].Last.Equal(decimal.RequireFromString("1.5")))
}

func TestRunOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.cache.blobs["gate_spot"] = []byte(`[{"currency_pair":"TKX_USDT","last":"3","base_volume":"1","quote_volume":"3"}]`)
	require.NoError(t, h.svc.RunOnce(t.Context()))

	v, ok := h.svc.Store().View(domain.ViewUSDT)
	require.True(t, ok)
	require.Len(t, v, 1)
	assert.True(t, v[0].Exchanges[0].Last.Equal(decimal.NewFromInt(3)))
}

func TestWarmStart(t *testing.T) {
	warm := []domain.TokenEntry{{
		Symbol: "OLD", Chain: "solana", ContractAddress: "So1",
		Exchanges: []domain.ExchangeEntry{{Name: "gate", Base: "OLD", Target: "SOL"}},
	}}
	h := newHarness(t, fakeLoader{entries: warm})

	h.svc.WarmStart(t.Context())
	dir := h.svc.Store().Load()
	require.NotNil(t, dir)
	assert.Equal(t, "warm", dir.CycleID)
	assert.Len(t, dir.SolEth, 1)
	assert.Empty(t, dir.USDT)

	// 已有快照时不再覆盖
	require.NoError(t, h.svc.Cycle(t.Context()))
	cur := h.svc.Store().Load()
	h.svc.WarmStart(t.Context())
	assert.Same(t, cur, h.svc.Store().Load())
}

func TestWarmStartLoaderError(t *testing.T) {
	h := newHarness(t, fakeLoader{err: errors.New("no such table")})
	h.svc.WarmStart(t.Context())
	assert.Nil(t, h.svc.Store().Load())
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(t.Context())

	done := make(chan error, 1)
	go func() { done <- h.svc.Run(ctx) }()

	require.Eventually(t, func() bool { return h.svc.Store().Load() != nil }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
