package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetDirectoryPutLookup(t *testing.T) {
	d := NewAssetDirectory()
	assert.False(t, d.Put("  ", AssetRecord{Exchange: "binance"}))
	assert.True(t, d.Put("0xABC", AssetRecord{Exchange: "binance", SettlementChain: "BSC"}))
	assert.True(t, d.Put("0xabc", AssetRecord{Exchange: "mxc", SettlementChain: "ERC20"}))

	rec, ok := d.Lookup("0xAbC", "mexc", "mxc")
	require.True(t, ok)
	assert.Equal(t, "ERC20", rec.SettlementChain)

	_, ok = d.Lookup("0xabc", "okex")
	assert.False(t, ok)
	assert.True(t, d.Has("0xABC"))
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, map[string]int{"binance": 1, "mxc": 1}, d.CountByExchange())
}

func TestParseField(t *testing.T) {
	f := ParseField("12.5")
	require.True(t, f.OK)
	assert.True(t, f.Value.Equal(decimal.RequireFromString("12.5")))

	assert.False(t, ParseField("").OK)
	assert.Equal(t, "missing", ParseField(" ").Reason)
	assert.False(t, ParseField("n/a").OK)
}

func TestTokenEntryCloneIsDeep(t *testing.T) {
	orig := TokenEntry{Symbol: "TKX", Exchanges: []ExchangeEntry{{Name: "binance"}}}
	cp := orig.Clone()
	cp.Exchanges[0].Name = "gate"
	assert.Equal(t, "binance", orig.Exchanges[0].Name)
}

func TestDirectoryView(t *testing.T) {
	d := &Directory{All: []TokenEntry{{Symbol: "A"}}, USDC: []TokenEntry{{Symbol: "B"}}}
	v, ok := d.View(ViewUSDC)
	require.True(t, ok)
	assert.Equal(t, "B", v[0].Symbol)
	_, ok = d.View("nope")
	assert.False(t, ok)

	var nilDir *Directory
	_, ok = nilDir.View(ViewAll)
	assert.False(t, ok)
}

func TestDecimalEncodesAsNumber(t *testing.T) {
	b, err := json.Marshal(ExchangeEntry{Name: "binance", Last: decimal.RequireFromString("1.25")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"last":1.25`)
}
