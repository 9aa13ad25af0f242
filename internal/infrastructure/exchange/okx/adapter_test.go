package okx

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

var creds = port.Credentials{APIKey: "k", APISecret: "s", Passphrase: "p"}

func TestSignerISO(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 678e6, time.UTC)
	req := exchange.Request{Path: "/api/v5/asset/currencies", Query: url.Values{"ccy": {"BTC"}}}
	signed, err := Signer{}.SignAt(creds, req, now)
	require.NoError(t, err)

	ts := "2024-01-02T03:04:05.678Z"
	assert.Equal(t, ts, signed.Header.Get("OK-ACCESS-TIMESTAMP"))
	assert.Equal(t, "p", signed.Header.Get("OK-ACCESS-PASSPHRASE"))
	assert.Equal(t, exchange.HMACBase64("s", ts+"GET/api/v5/asset/currencies?ccy=BTC"), signed.Header.Get("OK-ACCESS-SIGN"))
}

func TestSignerUnixWithBody(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	req := exchange.Request{Method: "post", Path: "/api/v6/dex/market/price-info", Body: `[{"chainIndex":"1"}]`}
	signed, err := Signer{Format: TimestampUnix}.SignAt(creds, req, now)
	require.NoError(t, err)

	assert.Equal(t, "1700000000.123", signed.Header.Get("OK-ACCESS-TIMESTAMP"))
	assert.Equal(t,
		exchange.HMACBase64("s", "1700000000.123POST/api/v6/dex/market/price-info"+`[{"chainIndex":"1"}]`),
		signed.Header.Get("OK-ACCESS-SIGN"))
}

func TestSignerNeedsPassphrase(t *testing.T) {
	_, err := Signer{}.SignAt(port.Credentials{APIKey: "k", APISecret: "s"}, exchange.Request{}, time.Now())
	assert.ErrorIs(t, err, exchange.ErrMissingCredentials)
}

func TestAssetRequestCarriesHeaders(t *testing.T) {
	req, err := New(exchange.Options{AssetBaseURL: "http://local"}).AssetRequest(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, "http://local/api/v5/asset/currencies", req.URL.String())
	assert.NotEmpty(t, req.Header.Get("OK-ACCESS-SIGN"))
}

func TestIdentity(t *testing.T) {
	a := New(exchange.Options{})
	assert.Equal(t, "okex", a.Name())
	assert.Equal(t, []string{"okx"}, a.Aliases())
	assert.Equal(t, "okx_spot", a.TickerKey())
	assert.Equal(t, "TKX-USDT", a.ComposeSymbol("tkx", "usdt"))
}

func TestParseAssetMetadata(t *testing.T) {
	body := []byte(`{"code":"0","msg":"","data":[
		{"ccy":"TKX","chain":"TKX-ERC20","ctAddr":"0xabc","canDep":true,"canWd":true,"fee":"1.2"},
		{"ccy":"TKX","chain":"TKX-TRC20","ctAddr":"","canDep":true,"canWd":true,"fee":"1"},
		{"ccy":"TKX","chain":"TKX-BSC","ctAddr":"0xdef","canWd":true,"fee":"1"}
	]}`)
	got, err := New(exchange.Options{}).ParseAssetMetadata(body)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "okex", got[0].Exchange)
	assert.Equal(t, "TKX-ERC20", got[0].SettlementChain)
}

func TestParseAuthCode(t *testing.T) {
	_, err := New(exchange.Options{}).ParseAssetMetadata([]byte(`{"code":"50113","msg":"Invalid Sign","data":[]}`))
	assert.ErrorIs(t, err, exchange.ErrAuth)

	_, err = New(exchange.Options{}).ParseRawTicker([]byte(`{"code":"50011","msg":"Too Many Requests","data":[]}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, exchange.ErrAuth)
}

func TestParseRawTicker(t *testing.T) {
	body := []byte(`{"code":"0","data":[{"instId":"TKX-USDT","last":"3","vol24h":"10","volCcy24h":"30"}]}`)
	got, err := New(exchange.Options{}).ParseRawTicker(body)
	require.NoError(t, err)
	assert.True(t, got["TKX-USDT"].Usable())
}
