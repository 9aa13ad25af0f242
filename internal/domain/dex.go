package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DexKey (chain, contract) 均为小写
type DexKey struct {
	Chain    string
	Contract string
}

// NewDexKey 构造小写化的 DexKey
func NewDexKey(chain, contract string) DexKey {
	return DexKey{
		Chain:    strings.ToLower(strings.TrimSpace(chain)),
		Contract: strings.ToLower(strings.TrimSpace(contract)),
	}
}

func (k DexKey) String() string { return k.Chain + ":" + k.Contract }

// DexQuote DEX 返回的价格数据
type DexQuote struct {
	Price     decimal.Decimal
	Liquidity decimal.Decimal
	MarketCap decimal.Decimal
}

// DexBlobItem 诊断输出，数值以字符串表示
type DexBlobItem struct {
	ChainName            string `json:"chainName"`
	TokenContractAddress string `json:"tokenContractAddress"`
	Price                string `json:"price"`
	Liquidity            string `json:"liquidity"`
	MarketCap            string `json:"marketCap"`
}
