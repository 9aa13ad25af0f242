package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
	"tokendict/internal/infrastructure/exchange/binance"
	"tokendict/internal/infrastructure/exchange/bitget"
	"tokendict/internal/infrastructure/exchange/gate"
	"tokendict/internal/infrastructure/exchange/lbank"
)

func assetServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/spot/currencies", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"currency":"TKX","chains":[
				{"name":"ETH","addr":"0xAAA","deposit_disabled":false,"withdraw_disabled":true},
				{"name":"BSC","addr":"","deposit_disabled":false,"withdraw_disabled":false}
			]},
			{"currency":"BAD","chains":"oops"}
		]`))
	})
	mux.HandleFunc("/api/v2/spot/public/coins", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/sapi/v1/capital/config/getall", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-MBX-APIKEY") != "k" || r.URL.Query().Get("signature") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"coin":"TKX","networkList":[
			{"contractAddress":"0xaaa","network":"BSC","depositEnable":true,"withdrawEnable":true,"withdrawFee":"0.5"}
		]}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func assetSet(base string) *exchange.Set {
	opts := exchange.Options{AssetBaseURL: base}
	return exchange.NewSetOf(binance.New(opts), bitget.New(opts), gate.New(opts), lbank.New(opts))
}

func httpFetcher(c *http.Client) Fetcher {
	return func(r *http.Request) ([]byte, error) { return exchange.Do(c, r) }
}

func reportsByName(reps []AssetFetchReport) map[string]AssetFetchReport {
	out := make(map[string]AssetFetchReport, len(reps))
	for _, r := range reps {
		out[r.Exchange] = r
	}
	return out
}

func TestBuildWithoutCredentials(t *testing.T) {
	srv := assetServer(t)
	b := NewAssetDirectoryBuilder(assetSet(srv.URL), nil, httpFetcher(srv.Client()), time.Second)

	dir, reps := b.Build(t.Context())

	byName := reportsByName(reps)
	require.Len(t, reps, 3, "lbank 无资产接口，不出现在报告中")
	assert.True(t, byName["binance"].Skipped)
	assert.Error(t, byName["bitget"].Err)
	assert.Equal(t, "http", port.ErrorKind(byName["bitget"].Err))
	assert.NoError(t, byName["gate"].Err)
	assert.Equal(t, 1, byName["gate"].Records)

	rec, ok := dir.Lookup("0xaaa", "gate")
	require.True(t, ok)
	assert.Equal(t, "ETH", rec.SettlementChain)
	assert.True(t, rec.DepositEnabled)
	assert.False(t, rec.WithdrawEnabled)
	assert.True(t, rec.WithdrawFee.IsZero())
	assert.Equal(t, map[string]int{"gate": 1}, dir.CountByExchange())
}

func TestBuildSignedVenue(t *testing.T) {
	srv := assetServer(t)
	creds := map[string]port.Credentials{"binance": {APIKey: "k", APISecret: "s"}}
	b := NewAssetDirectoryBuilder(assetSet(srv.URL), creds, httpFetcher(srv.Client()), time.Second)

	dir, reps := b.Build(t.Context())
	byName := reportsByName(reps)
	assert.False(t, byName["binance"].Skipped)
	assert.NoError(t, byName["binance"].Err)

	// 同一合约在两个交易所都有记录
	rec, ok := dir.Lookup("0xAAA", "binance")
	require.True(t, ok)
	assert.Equal(t, "BSC", rec.SettlementChain)
	assert.Equal(t, "0.5", rec.WithdrawFee.String())
	_, ok = dir.Lookup("0xAAA", "gate")
	assert.True(t, ok)
}

func TestBuildAuthRejected(t *testing.T) {
	srv := assetServer(t)
	creds := map[string]port.Credentials{"binance": {APIKey: "wrong", APISecret: "s"}}
	b := NewAssetDirectoryBuilder(assetSet(srv.URL), creds, httpFetcher(srv.Client()), time.Second)

	dir, reps := b.Build(t.Context())
	byName := reportsByName(reps)
	require.Error(t, byName["binance"].Err)
	assert.ErrorIs(t, byName["binance"].Err, port.ErrAuth)
	assert.True(t, dir.Has("0xaaa"), "其它交易所不受影响")
}
