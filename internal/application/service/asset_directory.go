package service

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
)

// Fetcher 执行一次 HTTP 请求，非 2xx 返回 error
type Fetcher func(*http.Request) ([]byte, error)

// AssetFetchReport 单个交易所本轮资产拉取结果
type AssetFetchReport struct {
	Exchange string
	Records  int
	Skipped  bool // 未配置凭证，未发请求
	Err      error
	Elapsed  time.Duration
}

// AssetDirectoryBuilder 并发拉取各交易所资产元数据，合并为 AssetDirectory
type AssetDirectoryBuilder struct {
	adapters []port.ExchangeAdapter
	creds    map[string]port.Credentials
	fetch    Fetcher
	timeout  time.Duration
}

// NewAssetDirectoryBuilder creds 以适配器 Name() 为 key；timeout<=0 时为 30s
func NewAssetDirectoryBuilder(set port.AdapterSet, creds map[string]port.Credentials, fetch Fetcher, timeout time.Duration) *AssetDirectoryBuilder {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if creds == nil {
		creds = map[string]port.Credentials{}
	}
	return &AssetDirectoryBuilder{
		adapters: set.All(),
		creds:    creds,
		fetch:    fetch,
		timeout:  timeout,
	}
}

// Build issues every asset request concurrently. A failing venue never blocks
// or fails the others; the directory simply carries fewer records.
func (b *AssetDirectoryBuilder) Build(ctx context.Context) (domain.AssetDirectory, []AssetFetchReport) {
	var (
		mu       sync.Mutex
		listings = make(map[string][]domain.AssetListing)
		reports  []AssetFetchReport
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range b.adapters {
		g.Go(func() error {
			rep, ls := b.fetchOne(gctx, a)
			if rep == nil {
				return nil
			}
			mu.Lock()
			reports = append(reports, *rep)
			if len(ls) > 0 {
				listings[a.Name()] = ls
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	dir := domain.NewAssetDirectory()
	names := make([]string, 0, len(listings))
	for name := range listings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, l := range listings[name] {
			dir.Put(l.Contract, l.AssetRecord)
		}
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Exchange < reports[j].Exchange })
	log.Info().
		Int("contracts", dir.Len()).
		Interface("by_exchange", dir.CountByExchange()).
		Msg("asset directory built")
	return dir, reports
}

// fetchOne 返回 nil 表示该交易所没有资产接口
func (b *AssetDirectoryBuilder) fetchOne(ctx context.Context, a port.ExchangeAdapter) (*AssetFetchReport, []domain.AssetListing) {
	start := time.Now()
	rep := &AssetFetchReport{Exchange: a.Name()}
	logger := log.With().Str("exchange", a.Name()).Logger()

	creds := b.creds[a.Name()]
	if a.SignedAssets() && creds.Empty() {
		rep.Skipped = true
		logger.Warn().Str("kind", "credentials").Msg("asset metadata skipped: credentials not configured")
		return rep, nil
	}

	cctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := a.AssetRequest(cctx, creds)
	if errors.Is(err, port.ErrNoAssetSource) {
		return nil, nil
	}
	if err != nil {
		rep.Err = err
		logger.Warn().Str("kind", port.ErrorKind(err)).Err(err).Msg("asset request build failed")
		return rep, nil
	}

	body, err := b.fetch(req)
	if err == nil {
		var ls []domain.AssetListing
		ls, err = a.ParseAssetMetadata(body)
		if err == nil {
			rep.Records = len(ls)
			rep.Elapsed = time.Since(start)
			logger.Debug().Int("records", len(ls)).Dur("elapsed", rep.Elapsed).Msg("asset metadata fetched")
			return rep, ls
		}
	}

	rep.Err = err
	rep.Elapsed = time.Since(start)
	kind := port.ErrorKind(err)
	if kind == "auth" {
		logger.Error().Str("kind", kind).Err(err).Msg("asset metadata rejected: check api key, secret and clock")
	} else {
		logger.Warn().Str("kind", kind).Err(err).Dur("elapsed", rep.Elapsed).Msg("asset metadata unavailable this cycle")
	}
	return rep, nil
}
