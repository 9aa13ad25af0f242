package kucoin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/infrastructure/exchange"
)

func TestParseAssetMetadataNullChains(t *testing.T) {
	body := []byte(`{"code":"200000","data":[
		{"currency":"OLD","chains":null},
		{"currency":"TKX","chains":[
			{"chainName":"ERC20","contractAddress":"0xabc","isDepositEnabled":true,"isWithdrawEnabled":true,"withdrawalMinFee":"7"}
		]}
	]}`)
	got, err := New(exchange.Options{}).ParseAssetMetadata(body)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kucoin", got[0].Exchange)
	assert.Equal(t, "7", got[0].WithdrawFee.String())
}

func TestParseRawTicker(t *testing.T) {
	body := []byte(`{"code":"200000","data":{"time":1,"ticker":[{"symbol":"TKX-USDT","last":"1","vol":"9","volValue":"9"}]}}`)
	got, err := New(exchange.Options{}).ParseRawTicker(body)
	require.NoError(t, err)
	assert.True(t, got["TKX-USDT"].Usable())
}
