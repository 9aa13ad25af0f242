package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
)

// OverlayStats 一次覆盖的统计
type OverlayStats struct {
	Entries       int
	Matched       int
	MissingBlobs  int
	ParseFailures int
	Unresolved    int
}

// PriceOverlay 用交易所原始行情刷新 last/volume/turnover
type PriceOverlay struct {
	set   port.AdapterSet
	cache port.TickerCache
}

func NewPriceOverlay(set port.AdapterSet, cache port.TickerCache) *PriceOverlay {
	return &PriceOverlay{set: set, cache: cache}
}

type quoteBook struct {
	adapter port.ExchangeAdapter
	quotes  map[string]domain.TickerQuote
}

// Apply returns a new Directory whose exchange prices come from the current
// raw ticker snapshots. dir is never modified. Entries without a usable match
// keep their previous prices; chain, contract and confirmation fields are
// never touched.
func (o *PriceOverlay) Apply(ctx context.Context, dir *domain.Directory) (*domain.Directory, OverlayStats) {
	var stats OverlayStats
	if dir == nil {
		return nil, stats
	}

	books := make(map[string]*quoteBook) // 以 TickerKey 为 key，每轮每个交易所只解析一次
	byName := make(map[string]*quoteBook)

	all := domain.CloneEntries(dir.All)
	for i := range all {
		for j := range all[i].Exchanges {
			ex := &all[i].Exchanges[j]
			stats.Entries++

			book, seen := byName[ex.Name]
			if !seen {
				book = o.load(ctx, ex.Name, books, &stats)
				byName[ex.Name] = book
			}
			if book == nil || book.quotes == nil {
				continue
			}

			symbol := strings.ToUpper(book.adapter.ComposeSymbol(ex.Base, ex.Target))
			q, ok := book.quotes[symbol]
			if !ok || !q.Usable() {
				continue
			}
			ex.Last = q.Last.Value
			if q.Volume.OK {
				ex.Volume = q.Volume.Value
			}
			if q.Turnover.OK {
				ex.Turnover = q.Turnover.Value
			}
			stats.Matched++
		}
	}

	out := Partition(all)
	out.CycleID = dir.CycleID
	out.BuiltAt = dir.BuiltAt

	log.Debug().
		Int("entries", stats.Entries).
		Int("matched", stats.Matched).
		Int("missing_blobs", stats.MissingBlobs).
		Int("parse_failures", stats.ParseFailures).
		Msg("price overlay")
	return out, stats
}

func (o *PriceOverlay) load(ctx context.Context, name string, books map[string]*quoteBook, stats *OverlayStats) *quoteBook {
	a, ok := o.set.Resolve(name)
	if !ok {
		stats.Unresolved++
		return nil
	}
	if book, ok := books[a.TickerKey()]; ok {
		return book
	}
	book := &quoteBook{adapter: a}
	books[a.TickerKey()] = book

	raw, found, err := o.cache.Get(ctx, a.TickerKey())
	if err != nil {
		log.Warn().Str("exchange", a.Name()).Str("kind", "transport").Err(err).Msg("ticker cache read failed")
		stats.MissingBlobs++
		return book
	}
	if !found {
		stats.MissingBlobs++
		return book
	}
	quotes, err := a.ParseRawTicker(raw)
	if err != nil {
		log.Warn().Str("exchange", a.Name()).Str("kind", "parse").Err(err).Msg("raw ticker unparsable")
		stats.ParseFailures++
		return book
	}
	book.quotes = quotes
	return book
}
