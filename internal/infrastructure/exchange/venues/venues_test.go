package venues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/infrastructure/exchange"
)

func TestAllVenuesRegistered(t *testing.T) {
	assert.Equal(t, []string{
		"binance", "bitget", "bitmart", "bybit", "gate", "huobi",
		"kucoin", "lbank", "mxc", "okex", "poloniex", "xt",
	}, exchange.Registered())
}

func TestSetResolvesAliases(t *testing.T) {
	set := exchange.NewSet(nil, nil)
	require.Len(t, set.All(), 12)

	cases := map[string]string{
		"bybit_spot": "bybit",
		"okx":        "okex",
		"OKX":        "okex",
		"mexc":       "mxc",
		"htx":        "huobi",
		"gate":       "gate",
	}
	for in, want := range cases {
		a, ok := set.Resolve(in)
		require.True(t, ok, in)
		assert.Equal(t, want, a.Name(), in)
		assert.Equal(t, want, set.NormalizeName(in))
	}
	assert.Equal(t, "unknownex", set.NormalizeName("UnknownEx"))
}

func TestTickerKeysUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range exchange.NewSet(nil, nil).All() {
		assert.False(t, seen[a.TickerKey()], a.TickerKey())
		seen[a.TickerKey()] = true
		assert.NotEmpty(t, a.TickerURL())
	}
}
