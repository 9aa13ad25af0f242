package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// 字典输出中的数值字段按 JSON number 编码
	decimal.MarshalJSONWithoutQuotes = true
}

// 发布视图名称，同时也是发布到各存储的 key
const (
	ViewAll    = "dict"
	ViewUSDT   = "dict_usdt"
	ViewSolEth = "dict_sol_eth"
	ViewUSDC   = "dict_usdc"

	// DexBlobKey DEX 诊断数据的 key
	DexBlobKey = "okx_dex"
)

// Views 按固定顺序返回所有视图名称
func Views() []string {
	return []string{ViewAll, ViewUSDT, ViewSolEth, ViewUSDC}
}

// ExchangeEntry 单个交易所上的交易对信息（TokenEntry 的子项）
type ExchangeEntry struct {
	Name            string          `json:"name"`
	Base            string          `json:"base"`
	Target          string          `json:"target"`
	Last            decimal.Decimal `json:"last"`
	Volume          decimal.Decimal `json:"volume"`
	Turnover        decimal.Decimal `json:"turnover"`
	TradeURL        string          `json:"tradeUrl"`
	SettlementChain string          `json:"commitedChain"` // 交易所声明的充提网络（未归一化）
	Confirmed       bool            `json:"confirmed"`
	DepositEnabled  bool            `json:"isDepositEnabled"`
	WithdrawEnabled bool            `json:"isWithdrawEnabled"`
	WithdrawFee     decimal.Decimal `json:"withdrawFee"`
}

// TokenEntry 规范化后的代币条目，按 (symbol, contract, chain) 唯一
type TokenEntry struct {
	Symbol          string          `json:"symbol"`
	Chain           string          `json:"chain"`
	ContractAddress string          `json:"contractAddress"`
	DexPrice        decimal.Decimal `json:"dexPrice"`
	Liquidity       decimal.Decimal `json:"liquidity"`
	Capitalization  decimal.Decimal `json:"capitalization"`
	Exchanges       []ExchangeEntry `json:"exchanges"`
}

// Clone deep-copies the entry so the copy can be modified without touching
// a published snapshot.
func (t TokenEntry) Clone() TokenEntry {
	out := t
	out.Exchanges = make([]ExchangeEntry, len(t.Exchanges))
	copy(out.Exchanges, t.Exchanges)
	return out
}

// HasConfirmed 是否至少有一个已确认的交易所
func (t TokenEntry) HasConfirmed() bool {
	for _, ex := range t.Exchanges {
		if ex.Confirmed {
			return true
		}
	}
	return false
}

// FirstConfirmed 返回第一个已确认的交易所
func (t TokenEntry) FirstConfirmed() (ExchangeEntry, bool) {
	for _, ex := range t.Exchanges {
		if ex.Confirmed {
			return ex, true
		}
	}
	return ExchangeEntry{}, false
}

// DexKey 返回 DEX 价格的查找键
func (t TokenEntry) DexKey() DexKey {
	return NewDexKey(t.Chain, t.ContractAddress)
}

// CloneEntries deep-copies a slice of entries.
func CloneEntries(in []TokenEntry) []TokenEntry {
	if in == nil {
		return nil
	}
	out := make([]TokenEntry, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// Directory 已发布的字典快照。发布后不可修改，只能整体替换。
type Directory struct {
	CycleID string
	BuiltAt time.Time

	All    []TokenEntry
	USDT   []TokenEntry
	SolEth []TokenEntry
	USDC   []TokenEntry
}

// View 按名称返回视图
func (d *Directory) View(name string) ([]TokenEntry, bool) {
	if d == nil {
		return nil, false
	}
	switch strings.ToLower(name) {
	case ViewAll:
		return d.All, true
	case ViewUSDT:
		return d.USDT, true
	case ViewSolEth:
		return d.SolEth, true
	case ViewUSDC:
		return d.USDC, true
	}
	return nil, false
}

// Clone deep-copies every view.
func (d *Directory) Clone() *Directory {
	if d == nil {
		return nil
	}
	return &Directory{
		CycleID: d.CycleID,
		BuiltAt: d.BuiltAt,
		All:     CloneEntries(d.All),
		USDT:    CloneEntries(d.USDT),
		SolEth:  CloneEntries(d.SolEth),
		USDC:    CloneEntries(d.USDC),
	}
}
