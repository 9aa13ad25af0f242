package binance

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

// DefaultStreamURL 全市场 mini ticker 推送
const DefaultStreamURL = "wss://stream.binance.com:9443/ws/!miniTicker@arr"

// MiniTickerFeed 订阅 !miniTicker@arr，合并为 REST 形状的快照写入 ticker 缓存，
// 与 HTTP poller 共用同一个 key
type MiniTickerFeed struct {
	ws    exchange.WSHelper
	cache port.TickerCache
	key   string
	ttl   time.Duration

	mu      sync.Mutex
	symbols map[string]snapshotRow
}

type miniTicker struct {
	Symbol      string `json:"s"`
	Close       string `json:"c"`
	Volume      string `json:"v"`
	QuoteVolume string `json:"q"`
}

type snapshotRow struct {
	Symbol      string       `json:"symbol"`
	Price       exchange.Num `json:"price"`
	Volume      exchange.Num `json:"volume"`
	QuoteVolume exchange.Num `json:"quoteVolume"`
}

// NewMiniTickerFeed url 为空时使用 DefaultStreamURL
func NewMiniTickerFeed(url string, cache port.TickerCache, ttl time.Duration) *MiniTickerFeed {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &MiniTickerFeed{
		ws:      exchange.WSHelper{URL: exchange.OrDefault(strings.TrimSpace(url), DefaultStreamURL)},
		cache:   cache,
		key:     "binance_spot",
		ttl:     ttl,
		symbols: make(map[string]snapshotRow),
	}
}

func (f *MiniTickerFeed) Name() string { return "binance" }

// Run blocks until ctx is done, reconnecting with exponential backoff.
func (f *MiniTickerFeed) Run(ctx context.Context) error {
	backoff := 500 * time.Millisecond
	maxBackoff := 10 * time.Second

	for {
		if ctx.Err() != nil {
			return nil
		}

		log.Info().Str("feed", "binance").Str("url", f.ws.URL).Msg("ws connecting")
		conn, err := f.ws.DialWS(ctx, 10*time.Second)
		if err != nil {
			log.Error().Str("feed", "binance").Str("kind", "transport").Err(err).Msg("ws dial failed")
			if !sleepCtx(ctx, backoff) {
				return nil
			}
			backoff = exchange.MinDuration(backoff*2, maxBackoff)
			continue
		}
		backoff = 500 * time.Millisecond

		err = f.ws.ReadWithPing(ctx, conn, func(b []byte) {
			if e := f.handle(ctx, b); e != nil {
				log.Debug().Str("feed", "binance").Str("kind", "parse").Err(e).Msg("mini ticker dropped")
			}
		})
		_ = conn.Close()

		if ctx.Err() != nil {
			return nil
		}
		log.Warn().Str("feed", "binance").Err(err).Msg("ws disconnected, reconnecting")
		if !sleepCtx(ctx, backoff) {
			return nil
		}
		backoff = exchange.MinDuration(backoff*2, maxBackoff)
	}
}

func (f *MiniTickerFeed) handle(ctx context.Context, b []byte) error {
	var msgs []miniTicker
	if err := json.Unmarshal(b, &msgs); err != nil {
		return err
	}
	payload, err := f.merge(msgs)
	if err != nil {
		return err
	}
	return f.cache.Set(ctx, f.key, payload, f.ttl)
}

// merge 合并增量推送并返回完整快照
func (f *MiniTickerFeed) merge(msgs []miniTicker) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range msgs {
		sym := strings.ToUpper(strings.TrimSpace(m.Symbol))
		if sym == "" || m.Close == "" {
			continue
		}
		f.symbols[sym] = snapshotRow{
			Symbol:      sym,
			Price:       exchange.NewNum(m.Close),
			Volume:      exchange.NewNum(m.Volume),
			QuoteVolume: exchange.NewNum(m.QuoteVolume),
		}
	}

	rows := make([]snapshotRow, 0, len(f.symbols))
	for _, r := range f.symbols {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Symbol < rows[j].Symbol })
	return json.Marshal(rows)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

var _ port.TickerFeed = (*MiniTickerFeed)(nil)
