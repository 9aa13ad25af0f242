// Package poller keeps the ticker cache warm by fetching each venue's full
// spot ticker endpoint on a fixed interval.
package poller

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

type Config struct {
	Interval time.Duration // 默认 3s
	Timeout  time.Duration // 单次请求超时，默认 10s
	TTL      time.Duration // 缓存有效期，默认 30s
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 3 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	return c
}

// Poller 单个交易所的 HTTP 行情轮询
type Poller struct {
	adapter port.ExchangeAdapter
	cache   port.TickerCache
	metrics port.Metrics
	http    *http.Client
	cfg     Config
}

func New(adapter port.ExchangeAdapter, cache port.TickerCache, metrics port.Metrics, cfg Config) *Poller {
	cfg = cfg.withDefaults()
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	return &Poller{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
		http:    exchange.NewHTTPClient(cfg.Timeout),
		cfg:     cfg,
	}
}

func (p *Poller) Name() string { return p.adapter.Name() }

// Run 立即拉取一次，之后每个 Interval 拉取；错误只记录日志
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil && ctx.Err() == nil {
			p.metrics.IncPollerError(p.adapter.Name())
			log.Warn().
				Str("exchange", p.adapter.Name()).
				Str("kind", port.ErrorKind(err)).
				Err(err).
				Msg("ticker poll failed")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll 拉取一次；只有能被交易所解析的响应才写入缓存
func (p *Poller) Poll(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	req, err := exchange.NewGet(cctx, p.adapter.TickerURL())
	if err != nil {
		return err
	}
	body, err := exchange.Do(p.http, req)
	if err != nil {
		return err
	}
	if _, err := p.adapter.ParseRawTicker(body); err != nil {
		return err
	}
	return p.cache.Set(ctx, p.adapter.TickerKey(), body, p.cfg.TTL)
}

var _ port.TickerFeed = (*Poller)(nil)
