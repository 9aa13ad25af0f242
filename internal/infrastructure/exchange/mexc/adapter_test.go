package mexc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
)

func TestSigner(t *testing.T) {
	signed, err := Signer{}.SignAt(port.Credentials{APIKey: "k", APISecret: "s"}, exchange.Request{}, time.UnixMilli(1700000000000))
	require.NoError(t, err)
	q := "recvWindow=30000&timestamp=1700000000000"
	assert.Equal(t, q+"&signature="+exchange.HMACHex("s", q), signed.Query)
	assert.Equal(t, "k", signed.Header.Get("X-MEXC-APIKEY"))
}

func TestParseAssetMetadata(t *testing.T) {
	body := []byte(`[{"coin":"TKX","networkList":[
		{"contract":"0xabc","netWork":"BEP20(BSC)","depositEnable":true,"withdrawEnable":true,"withdrawFee":"0.1"},
		{"contract":null,"netWork":"TRC20","depositEnable":true,"withdrawEnable":true,"withdrawFee":"1"}
	]},{"coin":"EMPTY"}]`)
	got, err := New(exchange.Options{}).ParseAssetMetadata(body)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "mxc", got[0].Exchange)
	assert.Equal(t, "BEP20(BSC)", got[0].SettlementChain)
}

func TestParseRawTicker(t *testing.T) {
	body := []byte(`[{"symbol":"TKXUSDT","lastPrice":"2","volume":"5","quoteVolume":"10"}]`)
	got, err := New(exchange.Options{}).ParseRawTicker(body)
	require.NoError(t, err)
	assert.True(t, got["TKXUSDT"].Usable())

	_, err = New(exchange.Options{}).ParseRawTicker([]byte(`{"code":700002}`))
	assert.Error(t, err)
}
