// Package chain canonicalizes free-form network labels into the fixed slug
// vocabulary used by the coin catalog.
package chain

import (
	"sort"
	"strings"
)

// 规范化后的链 slug
const (
	Ethereum           = "ethereum"
	Solana             = "solana"
	ArbitrumOne        = "arbitrum-one"
	Scroll             = "scroll"
	ZkSync             = "zksync"
	BinanceSmartChain  = "binance-smart-chain"
	Base               = "base"
	ZoraNetwork        = "zora-network"
	Sui                = "sui"
	OptimisticEthereum = "optimistic-ethereum"
	Avalanche          = "avalanche"
	Tron               = "tron"
	TheOpenNetwork     = "the-open-network"
	Aptos              = "aptos"
	NearProtocol       = "near-protocol"
	Kava               = "kava"
	Celo               = "celo"
	Linea              = "linea"
	PolygonPos         = "polygon-pos"
	Osmosis            = "osmosis"
)

// aliases slug -> 交易所常见写法（大写）。slug 本身会在 init 中自动加入。
var aliases = map[string][]string{
	Ethereum:           {"ETH", "ERC20", "ETHEREUM", "ETH-ERC20"},
	Solana:             {"SOL", "SOL-SOL", "SOLANA", "SPL"},
	ArbitrumOne:        {"ARBITRUM", "ARBITRUMONE", "ARBI", "ARBEVM", "ANIME-ARBITRUM ONE"},
	Scroll:             {"SCROLLETH", "SCROLL-ETH"},
	ZkSync:             {"ZKSYNCERA", "ZKSERA", "ZKSYNK"},
	BinanceSmartChain:  {"BSC", "BEP20", "BNB SMART CHAIN", "BSC_BNB", "BNB", "BNBCHAIN"},
	Base:               {"BASEEVM", "BASE-ETH"},
	ZoraNetwork:        {"ZORA"},
	Sui:                nil,
	OptimisticEthereum: {"OPTIMISM", "OP", "OPETH", "OPT"},
	Avalanche:          {"AVAX", "AVAX_C", "C-CHAIN", "CAVAX"},
	Tron:               {"TRX", "TRC20", "TRC"},
	TheOpenNetwork:     {"TON", "TONCOIN"},
	Aptos:              {"APT"},
	NearProtocol:       {"NEAR", "NEAR PROTOCOL"},
	Kava:               nil,
	Celo:               nil,
	Linea:              {"LINEAETH", "LINEA-ETH"},
	PolygonPos:         {"POLYGON", "MATIC", "POLYGON POS"},
	Osmosis:            nil,
}

var (
	lookup  map[string]string
	targets []string
)

func init() {
	lookup = make(map[string]string, 96)
	targets = make([]string, 0, len(aliases))
	for slug, names := range aliases {
		lookup[strings.ToUpper(slug)] = slug
		for _, n := range names {
			lookup[n] = slug
		}
		targets = append(targets, slug)
	}
	sort.Strings(targets)
}

// Normalize maps a raw chain label to its canonical slug, or "" when the
// label is unknown. Canonical slugs map to themselves.
func Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	return lookup[s]
}

// IsTarget 是否为支持的链（大小写不敏感）
func IsTarget(slug string) bool {
	s := strings.ToLower(strings.TrimSpace(slug))
	_, ok := aliases[s]
	return ok
}

// Targets 返回排序后的全部支持链
func Targets() []string {
	out := make([]string, len(targets))
	copy(out, targets)
	return out
}
