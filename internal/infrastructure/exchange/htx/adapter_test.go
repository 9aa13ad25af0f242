package htx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/domain"
	"tokendict/internal/infrastructure/exchange"
)

func TestParseAssetMetadata(t *testing.T) {
	body := []byte(`{"status":"ok","data":[
		{"chain":"tkx","ca":"0xABC","dn":"ERC20","de":true,"we":false},
		{"chain":"tkx2","ca":"0xdef","dn":"TRC20","de":true}
	]}`)
	got, err := New(exchange.Options{}).ParseAssetMetadata(body)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "huobi", got[0].Exchange)
	assert.True(t, got[0].WithdrawFee.IsZero())
}

func TestParseRawTickerNumbers(t *testing.T) {
	body := []byte(`{"status":"ok","data":[{"symbol":"tkxusdt","close":1.5,"vol":300.25,"amount":200}]}`)
	got, err := New(exchange.Options{}).ParseRawTicker(body)
	require.NoError(t, err)
	q := got["TKXUSDT"]
	require.True(t, q.Usable())
	assert.True(t, q.Volume.Value.Equal(decimal.RequireFromString("300.25")))
	assert.Equal(t, domain.NotProvided, q.Turnover.Reason)
}

func TestStatusError(t *testing.T) {
	_, err := New(exchange.Options{}).ParseRawTicker([]byte(`{"status":"error","err-code":"bad-request","err-msg":"x"}`))
	assert.Error(t, err)
}
