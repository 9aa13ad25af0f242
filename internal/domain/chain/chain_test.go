package chain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAliases(t *testing.T) {
	cases := map[string]string{
		"erc20":             Ethereum,
		" ETH ":             Ethereum,
		"Ethereum":          Ethereum,
		"spl":               Solana,
		"ARBITRUM":          ArbitrumOne,
		"ARBITRUM-ONE":      ArbitrumOne,
		"anime-arbitrum one": ArbitrumOne,
		"bep20":             BinanceSmartChain,
		"bsc":               BinanceSmartChain,
		"BNB Smart Chain":   BinanceSmartChain,
		"Base":              Base,
		"zora":              ZoraNetwork,
		"op":                OptimisticEthereum,
		"AVAX_C":            Avalanche,
		"trc20":             Tron,
		"toncoin":           TheOpenNetwork,
		"apt":               Aptos,
		"near protocol":     NearProtocol,
		"linea-eth":         Linea,
		"matic":             PolygonPos,
		"Osmosis":           Osmosis,
		"zksync":            ZkSync,
		"SCROLL":            Scroll,
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalizeUnknown(t *testing.T) {
	for _, in := range []string{"", "   ", "bitcoin", "HECO", "ethereum classic"} {
		assert.Empty(t, Normalize(in), "input %q", in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, slug := range Targets() {
		assert.Equal(t, slug, Normalize(slug))
		assert.Equal(t, slug, Normalize(strings.ToUpper(slug)))
		assert.Equal(t, slug, Normalize(Normalize(slug)))
	}
	for _, in := range []string{"bep20", "matic", "TRX", "unknown"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestTargets(t *testing.T) {
	ts := Targets()
	assert.Len(t, ts, 20)
	assert.True(t, IsTarget("Arbitrum-One"))
	assert.True(t, IsTarget("polygon-pos"))
	assert.False(t, IsTarget("bitcoin"))
	assert.False(t, IsTarget("bsc"))
}
