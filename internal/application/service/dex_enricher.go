package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/domain/chain"
)

// chainIndex 链 slug -> DEX chainIndex
var chainIndex = map[string]string{
	chain.Ethereum:           "1",
	chain.Solana:             "501",
	chain.ArbitrumOne:        "42161",
	chain.Scroll:             "534352",
	chain.ZkSync:             "324",
	chain.BinanceSmartChain:  "56",
	chain.Base:               "8453",
	chain.ZoraNetwork:        "7777777",
	chain.Sui:                "784",
	chain.OptimisticEthereum: "10",
	chain.Avalanche:          "43114",
	chain.Tron:               "195",
	chain.TheOpenNetwork:     "607",
	chain.Linea:              "59144",
	chain.PolygonPos:         "137",
}

// ChainIndex 返回链对应的 DEX chainIndex
func ChainIndex(slug string) (string, bool) {
	idx, ok := chainIndex[strings.ToLower(strings.TrimSpace(slug))]
	return idx, ok
}

// Backoff is the inter-batch delay state. It is passed into and returned from
// every enrichment pass instead of living on the enricher.
type Backoff struct {
	Delay time.Duration
	Step  time.Duration
	Max   time.Duration
}

// DefaultBackoff 50ms 起步，每次限频 +50ms，上限 500ms
func DefaultBackoff() Backoff {
	return Backoff{Delay: 50 * time.Millisecond, Step: 50 * time.Millisecond, Max: 500 * time.Millisecond}
}

// OnRateLimit 返回增大并截断后的延迟
func (b Backoff) OnRateLimit() Backoff {
	next := b.Delay + b.Step
	if b.Max > 0 && next > b.Max {
		next = b.Max
	}
	if next < b.Delay {
		next = b.Delay
	}
	b.Delay = next
	return b
}

// EnrichResult 一次 DEX 富化的结果
type EnrichResult struct {
	Quotes     map[domain.DexKey]domain.DexQuote
	Blob       []domain.DexBlobItem
	NotUpdated []port.DexPair

	Pairs       int
	Batches     int
	Failed      int
	RateLimited int
	Oversized   int
}

// DexEnricherOptions 批次参数
type DexEnricherOptions struct {
	BatchSize int           // 默认 100
	Cooldown  time.Duration // 限频后的额外等待，默认 2s
}

// DexEnricher 按批次顺序查询 DEX 价格
type DexEnricher struct {
	source    port.DexPriceSource
	batchSize int
	cooldown  time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewDexEnricher(source port.DexPriceSource, opts DexEnricherOptions) *DexEnricher {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.Cooldown < 0 {
		opts.Cooldown = 0
	} else if opts.Cooldown == 0 {
		opts.Cooldown = 2 * time.Second
	}
	return &DexEnricher{
		source:    source,
		batchSize: opts.BatchSize,
		cooldown:  opts.Cooldown,
		sleep:     sleepCtx,
	}
}

// Pairs dedups entries by (chain, lower(contract)), skipping chains without
// an index. The contract keeps its first-seen casing since some chains
// (solana, tron, ton, sui) have case-sensitive addresses. Order follows first
// appearance.
func Pairs(entries []domain.TokenEntry) []port.DexPair {
	seen := make(map[domain.DexKey]struct{})
	var out []port.DexPair
	for _, e := range entries {
		key := e.DexKey()
		if key.Chain == "" || key.Contract == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		idx, ok := chainIndex[key.Chain]
		if !ok {
			continue
		}
		out = append(out, port.DexPair{ChainIndex: idx, Contract: strings.TrimSpace(e.ContractAddress), Chain: key.Chain})
	}
	return out
}

// Enrich queries the DEX source batch by batch. Batches never run
// concurrently; the returned Backoff carries any rate-limit increase into the
// next pass. Cancellation stops at the next wait point.
func (e *DexEnricher) Enrich(ctx context.Context, entries []domain.TokenEntry, backoff Backoff) (EnrichResult, Backoff) {
	pairs := Pairs(entries)
	res := EnrichResult{
		Quotes: make(map[domain.DexKey]domain.DexQuote),
		Pairs:  len(pairs),
	}

batches:
	for start := 0; start < len(pairs); start += e.batchSize {
		if ctx.Err() != nil {
			break
		}
		end := min(start+e.batchSize, len(pairs))
		batch := pairs[start:end]
		res.Batches++

		rows, err := e.source.PriceInfo(ctx, batch)
		switch {
		case err == nil:
			accepted := acceptRows(batch, rows, res.Quotes)
			log.Debug().Int("batch", res.Batches).Int("pairs", len(batch)).Int("accepted", accepted).Msg("dex batch done")
		case errors.Is(err, port.ErrRateLimited):
			res.Failed++
			res.RateLimited++
			backoff = backoff.OnRateLimit()
			log.Error().Str("kind", "rate_limit").Int("batch", res.Batches).Dur("delay", backoff.Delay).Msg("dex rate limited, delay raised")
			if e.cooldown > 0 && e.sleep(ctx, e.cooldown) != nil {
				break batches
			}
		case errors.Is(err, port.ErrOversized):
			res.Failed++
			res.Oversized++
			log.Error().Str("kind", "oversized").Int("batch", res.Batches).Int("batch_size", e.batchSize).
				Msg("dex batch rejected as oversized, lower dex.batch_size")
		case errors.Is(err, port.ErrAuth):
			res.Failed++
			log.Error().Str("kind", "auth").Int("batch", res.Batches).Err(err).Msg("dex authentication failed")
		default:
			res.Failed++
			log.Warn().Str("kind", port.ErrorKind(err)).Int("batch", res.Batches).Err(err).Msg("dex batch failed")
		}

		if end < len(pairs) && backoff.Delay > 0 {
			if e.sleep(ctx, backoff.Delay) != nil {
				break batches
			}
		}
	}

	for _, p := range pairs {
		if _, ok := res.Quotes[domain.NewDexKey(p.Chain, p.Contract)]; !ok {
			res.NotUpdated = append(res.NotUpdated, p)
		}
	}
	res.Blob = BlobItems(res.Quotes, pairs)

	log.Info().
		Int("pairs", res.Pairs).
		Int("batches", res.Batches).
		Int("prices", len(res.Quotes)).
		Int("failed", res.Failed).
		Int("not_updated", len(res.NotUpdated)).
		Dur("delay", backoff.Delay).
		Msg("dex enrichment done")
	if len(res.NotUpdated) > 0 {
		ev := log.Debug()
		if ev.Enabled() {
			keys := make([]string, 0, len(res.NotUpdated))
			for _, p := range res.NotUpdated {
				keys = append(keys, p.ChainIndex+":"+p.Contract)
			}
			ev.Strs("pairs", keys).Msg("dex not updated")
		}
	}
	return res, backoff
}

// acceptRows 只接受价格 > 0 的行
func acceptRows(batch []port.DexPair, rows []port.DexRow, into map[domain.DexKey]domain.DexQuote) int {
	byIndex := make(map[string]string, len(batch))
	for _, p := range batch {
		byIndex[p.ChainIndex+":"+strings.ToLower(p.Contract)] = p.Chain
	}
	n := 0
	for _, r := range rows {
		c, ok := byIndex[r.ChainIndex+":"+strings.ToLower(r.Contract)]
		if !ok {
			continue
		}
		f := domain.ParseField(r.Price)
		if !f.OK || !f.Value.IsPositive() {
			continue
		}
		into[domain.NewDexKey(c, r.Contract)] = domain.DexQuote{
			Price:     f.Value,
			Liquidity: parseOrZero(r.Liquidity),
			MarketCap: parseOrZero(r.MarketCap),
		}
		n++
	}
	return n
}

func parseOrZero(s string) decimal.Decimal {
	f := domain.ParseField(s)
	if !f.OK {
		return decimal.Zero
	}
	return f.Value
}

// ApplyDex returns a copy of entries with DEX fields set for matched keys.
// Unmatched entries keep whatever DEX fields they already had.
func ApplyDex(entries []domain.TokenEntry, quotes map[domain.DexKey]domain.DexQuote) ([]domain.TokenEntry, int) {
	out := domain.CloneEntries(entries)
	updated := 0
	for i := range out {
		q, ok := quotes[out[i].DexKey()]
		if !ok {
			continue
		}
		out[i].DexPrice = q.Price
		out[i].Liquidity = q.Liquidity
		out[i].Capitalization = q.MarketCap
		updated++
	}
	return out, updated
}

// CarryDex copies DEX fields from prev onto entries whose key matches, so a
// failed lookup in this cycle keeps last cycle's values.
func CarryDex(entries, prev []domain.TokenEntry) []domain.TokenEntry {
	if len(prev) == 0 {
		return entries
	}
	old := make(map[domain.DexKey]domain.DexQuote, len(prev))
	for _, p := range prev {
		if p.DexPrice.IsPositive() {
			old[p.DexKey()] = domain.DexQuote{Price: p.DexPrice, Liquidity: p.Liquidity, MarketCap: p.Capitalization}
		}
	}
	out, _ := ApplyDex(entries, old)
	return out
}

// BlobItems 诊断输出，按 chain、contract 排序。合约地址沿用 pairs 中的原始大小写
func BlobItems(quotes map[domain.DexKey]domain.DexQuote, pairs []port.DexPair) []domain.DexBlobItem {
	contracts := make(map[domain.DexKey]string, len(pairs))
	for _, p := range pairs {
		contracts[domain.NewDexKey(p.Chain, p.Contract)] = p.Contract
	}
	out := make([]domain.DexBlobItem, 0, len(quotes))
	for k, q := range quotes {
		contract, ok := contracts[k]
		if !ok {
			contract = k.Contract
		}
		out = append(out, domain.DexBlobItem{
			ChainName:            k.Chain,
			TokenContractAddress: contract,
			Price:                q.Price.String(),
			Liquidity:            q.Liquidity.String(),
			MarketCap:            q.MarketCap.String(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ChainName != out[j].ChainName {
			return out[i].ChainName < out[j].ChainName
		}
		return out[i].TokenContractAddress < out[j].TokenContractAddress
	})
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
