package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/pricefeed"
)

// ErrNoFeeds 没有任何行情源
var ErrNoFeeds = errors.New("no ticker feeds registered")

// RetryConfig 行情源异常退出后的重启配置
type RetryConfig struct {
	MaxRetries int           // 最大重试次数，超过后放弃该数据源
	InitialDel time.Duration // 初始延迟
	MaxDelay   time.Duration // 最大延迟
}

// DefaultRetryConfig 默认重试配置
var DefaultRetryConfig = RetryConfig{
	MaxRetries: 5,
	InitialDel: 1 * time.Second,
	MaxDelay:   30 * time.Second,
}

// Manager 统一运行所有交易所的行情源（HTTP 轮询与 websocket 推送）
type Manager struct {
	mu          sync.Mutex
	feeds       []port.TickerFeed
	retryConfig RetryConfig
}

func NewManager() *Manager {
	return &Manager{retryConfig: DefaultRetryConfig}
}

// SetRetryConfig 设置重试配置
func (m *Manager) SetRetryConfig(cfg RetryConfig) {
	m.retryConfig = cfg
}

// Add 注册行情源
func (m *Manager) Add(feeds ...port.TickerFeed) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range feeds {
		if f != nil {
			m.feeds = append(m.feeds, f)
		}
	}
}

// AddWebsocketFeeds 为已启用且注册了 websocket 工厂的交易所创建推送源。
// urls 为交易所 -> ws 地址，缺省时使用交易所默认地址。
func (m *Manager) AddWebsocketFeeds(enabled []string, urls map[string]string, cache port.TickerCache, ttl time.Duration) int {
	n := 0
	for _, name := range enabled {
		factory, ok := pricefeed.Get(name)
		if !ok {
			continue
		}
		m.Add(factory(urls[name], cache, ttl))
		n++
		log.Info().Str("exchange", name).Msg("websocket ticker feed initialized")
	}
	return n
}

// Len 已注册的行情源数量
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.feeds)
}

// Run 并发运行全部行情源直到 ctx 结束。单个数据源失败时按退避重启，
// 超过重试次数后放弃该数据源，不影响其它数据源。
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	feeds := make([]port.TickerFeed, len(m.feeds))
	copy(feeds, m.feeds)
	m.mu.Unlock()

	if len(feeds) == 0 {
		return ErrNoFeeds
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range feeds {
		g.Go(func() error {
			if err := m.runWithRetry(gctx, f); err != nil {
				log.Error().Err(err).Str("exchange", f.Name()).Msg("ticker feed stopped")
			}
			return nil
		})
	}
	return g.Wait()
}

func (m *Manager) runWithRetry(ctx context.Context, f port.TickerFeed) error {
	var lastErr error
	delay := m.retryConfig.InitialDel

	for attempt := 0; attempt <= m.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Info().
				Str("exchange", f.Name()).
				Int("attempt", attempt).
				Int64("delay_ms", delay.Milliseconds()).
				Msg("restarting ticker feed")
			if !sleep(ctx, delay) {
				return nil
			}
			delay = min(delay*2, m.retryConfig.MaxDelay)
		}

		err := f.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			// 数据源自行结束
			return nil
		}
		lastErr = err
		log.Warn().Err(err).Str("exchange", f.Name()).Msg("ticker feed exited")
	}
	return fmt.Errorf("ticker feed %s gave up after %d retries: %w", f.Name(), m.retryConfig.MaxRetries, lastErr)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
