package service

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
	"tokendict/internal/domain/chain"
)

// Reconciler 将行情、币种目录、资产目录合并为规范化的代币字典
type Reconciler struct {
	set port.AdapterSet
}

func NewReconciler(set port.AdapterSet) *Reconciler {
	return &Reconciler{set: set}
}

// ReconcileStats 对账统计，仅用于日志
type ReconcileStats struct {
	Coins            int
	CoinsWithTargets int
	MatchedContracts int
	Confirmed        int
	Defaulted        int
	Tokens           int
}

// Reconcile builds one TokenEntry per (catalog entry, supported chain) that
// has at least one ticker quoted in an allowed asset. Output follows catalog
// order, then chain slug order.
func (r *Reconciler) Reconcile(tickers []domain.RawTicker, coins []domain.CatalogEntry, assets domain.AssetDirectory) ([]domain.TokenEntry, ReconcileStats) {
	byCoin := make(map[string][]domain.RawTicker)
	for _, t := range tickers {
		id := strings.ToLower(strings.TrimSpace(t.CoinID))
		if id == "" {
			continue
		}
		byCoin[id] = append(byCoin[id], t)
	}

	stats := ReconcileStats{Coins: len(coins)}
	var out []domain.TokenEntry
	for _, coin := range coins {
		id := strings.TrimSpace(coin.ID)
		if id == "" || len(coin.Platforms) == 0 {
			continue
		}
		symbol := strings.ToUpper(strings.TrimSpace(coin.Symbol))
		if symbol == "" {
			symbol = strings.ToUpper(id)
		}

		chains := make([]string, 0, len(coin.Platforms))
		for c, contract := range coin.Platforms {
			if chain.IsTarget(c) && strings.TrimSpace(contract) != "" {
				chains = append(chains, c)
			}
		}
		if len(chains) == 0 {
			continue
		}
		stats.CoinsWithTargets++
		sort.Strings(chains)

		list := byCoin[strings.ToLower(id)]
		for _, c := range chains {
			contract := strings.TrimSpace(coin.Platforms[c])
			exchanges := r.collect(list, symbol)
			if len(exchanges) == 0 {
				continue
			}
			if assets.Has(contract) {
				stats.MatchedContracts++
			}
			for i := range exchanges {
				ex := &exchanges[i]
				if rec, ok := assets.Lookup(contract, ex.Name, r.set.NormalizeName(ex.Name)); ok {
					ex.Confirmed = true
					ex.SettlementChain = rec.SettlementChain
					ex.DepositEnabled = rec.DepositEnabled
					ex.WithdrawEnabled = rec.WithdrawEnabled
					ex.WithdrawFee = rec.WithdrawFee
					stats.Confirmed++
					continue
				}
				// 没有资产数据的交易所按目录链放行
				ex.Confirmed = true
				ex.SettlementChain = c
				ex.DepositEnabled = true
				ex.WithdrawEnabled = true
				ex.WithdrawFee = decimal.Zero
				stats.Defaulted++
			}
			out = append(out, domain.TokenEntry{
				Symbol:          symbol,
				Chain:           c,
				ContractAddress: contract,
				Exchanges:       exchanges,
			})
		}
	}
	stats.Tokens = len(out)

	log.Info().
		Int("coins", stats.Coins).
		Int("with_targets", stats.CoinsWithTargets).
		Int("matched_contracts", stats.MatchedContracts).
		Int("confirmed", stats.Confirmed).
		Int("defaulted", stats.Defaulted).
		Int("tokens", stats.Tokens).
		Msg("reconcile done")
	return out, stats
}

func (r *Reconciler) collect(list []domain.RawTicker, symbol string) []domain.ExchangeEntry {
	var out []domain.ExchangeEntry
	for _, t := range list {
		target := strings.ToUpper(strings.TrimSpace(t.Target))
		if !domain.AllowedQuote(target) {
			continue
		}
		base := strings.TrimSpace(t.Base)
		if base == "" {
			base = symbol
		}
		out = append(out, domain.ExchangeEntry{
			Name:     t.ExchangeID,
			Base:     base,
			Target:   target,
			Last:     t.Last,
			Volume:   t.Volume,
			TradeURL: strings.TrimSpace(t.TradeURL),
		})
	}
	return out
}

type groupKey struct {
	symbol   string
	contract string
}

// ResolveChains groups entries by (symbol, contract). When the confirmed
// exchanges of a group agree on exactly one normalized chain and at least one
// member carries that chain, the other members are dropped. Otherwise the
// group is kept as is.
func ResolveChains(entries []domain.TokenEntry) []domain.TokenEntry {
	groups := make(map[groupKey][]int)
	for i, e := range entries {
		k := groupKey{symbol: e.Symbol, contract: strings.ToLower(e.ContractAddress)}
		groups[k] = append(groups[k], i)
	}

	drop := make(map[int]bool)
	for _, idx := range groups {
		distinct := make(map[string]struct{})
		for _, i := range idx {
			ex, ok := entries[i].FirstConfirmed()
			if !ok {
				continue
			}
			if c := chain.Normalize(ex.SettlementChain); c != "" {
				distinct[c] = struct{}{}
			}
		}
		if len(distinct) != 1 {
			continue
		}
		var only string
		for c := range distinct {
			only = c
		}

		matched := false
		for _, i := range idx {
			if strings.EqualFold(entries[i].Chain, only) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, i := range idx {
			if !strings.EqualFold(entries[i].Chain, only) {
				drop[i] = true
			}
		}
	}

	out := make([]domain.TokenEntry, 0, len(entries)-len(drop))
	for i, e := range entries {
		if !drop[i] {
			out = append(out, e)
		}
	}
	if len(drop) > 0 {
		log.Debug().Int("dropped", len(drop)).Int("kept", len(out)).Msg("chain resolution")
	}
	return out
}

// FilterByQuotes keeps, for every entry, only the exchanges quoted in one of
// quotes; entries left without exchanges are dropped.
func FilterByQuotes(entries []domain.TokenEntry, quotes ...string) []domain.TokenEntry {
	want := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		want[strings.ToUpper(q)] = struct{}{}
	}
	out := make([]domain.TokenEntry, 0)
	for _, e := range entries {
		var exs []domain.ExchangeEntry
		for _, ex := range e.Exchanges {
			if _, ok := want[strings.ToUpper(ex.Target)]; ok {
				exs = append(exs, ex)
			}
		}
		if len(exs) == 0 {
			continue
		}
		cp := e
		cp.Exchanges = exs
		out = append(out, cp)
	}
	return out
}

// Partition 构造四个视图；All 为深拷贝，各视图互不共享 Exchanges
func Partition(all []domain.TokenEntry) *domain.Directory {
	all = domain.CloneEntries(all)
	if all == nil {
		all = []domain.TokenEntry{}
	}
	return &domain.Directory{
		All:    all,
		USDT:   FilterByQuotes(all, domain.QuoteUSDT),
		SolEth: FilterByQuotes(all, domain.QuoteSOL, domain.QuoteETH),
		USDC:   FilterByQuotes(all, domain.QuoteUSDC),
	}
}
