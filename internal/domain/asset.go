package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AssetRecord 交易所对某合约的充提信息
type AssetRecord struct {
	Exchange        string
	SettlementChain string
	DepositEnabled  bool
	WithdrawEnabled bool
	WithdrawFee     decimal.Decimal
}

// AssetListing 解析器输出：合约地址 + 记录（尚未入表）
type AssetListing struct {
	Contract string
	AssetRecord
}

// AssetDirectory lower(contract) -> exchange -> record.
// 每个对账周期整体重建，不做增量更新。
type AssetDirectory map[string]map[string]AssetRecord

// NewAssetDirectory 创建空的资产目录
func NewAssetDirectory() AssetDirectory {
	return make(AssetDirectory)
}

// Put stores rec under its contract and exchange. Blank contracts are ignored.
// A later record for the same (contract, exchange) replaces the earlier one.
func (d AssetDirectory) Put(contract string, rec AssetRecord) bool {
	key := strings.ToLower(strings.TrimSpace(contract))
	if key == "" {
		return false
	}
	byEx, ok := d[key]
	if !ok {
		byEx = make(map[string]AssetRecord)
		d[key] = byEx
	}
	byEx[strings.ToLower(rec.Exchange)] = rec
	return true
}

// Lookup 按合约地址查找，依次尝试给出的交易所名称
func (d AssetDirectory) Lookup(contract string, names ...string) (AssetRecord, bool) {
	byEx, ok := d[strings.ToLower(strings.TrimSpace(contract))]
	if !ok {
		return AssetRecord{}, false
	}
	for _, n := range names {
		if rec, ok := byEx[strings.ToLower(n)]; ok {
			return rec, true
		}
	}
	return AssetRecord{}, false
}

// Has reports whether any exchange has a record for contract.
func (d AssetDirectory) Has(contract string) bool {
	_, ok := d[strings.ToLower(strings.TrimSpace(contract))]
	return ok
}

// Len 记录总数
func (d AssetDirectory) Len() int {
	n := 0
	for _, byEx := range d {
		n += len(byEx)
	}
	return n
}

// CountByExchange 按交易所统计记录数
func (d AssetDirectory) CountByExchange() map[string]int {
	out := make(map[string]int)
	for _, byEx := range d {
		for ex := range byEx {
			out[ex]++
		}
	}
	return out
}
