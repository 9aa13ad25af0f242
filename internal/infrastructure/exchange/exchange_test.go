package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/application/port"
	"tokendict/internal/domain"
)

func TestComposeSymbol(t *testing.T) {
	assert.Equal(t, "TKXUSDT", ComposeSymbol("tkx", "usdt", SepNone))
	assert.Equal(t, "TKX_USDT", ComposeSymbol("tkx", "USDT", SepUnderscore))
	assert.Equal(t, "TKX-USDT", ComposeSymbol(" tkx ", "usdt", SepHyphen))
	assert.Empty(t, ComposeSymbol("", "usdt", SepNone))
}

func TestNumAcceptsStringsNumbersNull(t *testing.T) {
	var v struct {
		A Num `json:"a"`
		B Num `json:"b"`
		C Num `json:"c"`
		D Num `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"1.5","b":2,"c":null,"d":"oops"}`), &v))

	assert.True(t, v.A.Field().Value.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, v.B.Field().OK)
	assert.Equal(t, "missing", v.C.Field().Reason)
	assert.False(t, v.D.Field().OK)
	assert.True(t, v.D.Decimal().IsZero())
}

func TestFlag(t *testing.T) {
	for in, want := range map[string]bool{`true`: true, `"true"`: true, `"1"`: true, `0`: false, `"false"`: false} {
		var f Flag
		require.NoError(t, json.Unmarshal([]byte(in), &f), in)
		assert.True(t, f.Valid, in)
		assert.Equal(t, want, f.Value, in)
	}
	var f Flag
	assert.Error(t, json.Unmarshal([]byte(`"sometimes"`), &f))
}

// captureLog 把全局 logger 临时指向 buffer
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func TestDecodeRowsSkipsMalformed(t *testing.T) {
	buf := captureLog(t)
	rows := []json.RawMessage{[]byte(`{"x":"a"}`), []byte(`{"x":1}`), []byte(`{"x":"b"}`)}
	var got []string
	skipped := DecodeRows("gate", rows, func(r struct {
		X string `json:"x"`
	}) {
		got = append(got, r.X)
	})
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []string{"a", "b"}, got)

	out := buf.String()
	assert.Contains(t, out, `"exchange":"gate"`)
	assert.Contains(t, out, `"kind":"parse"`)
	assert.Contains(t, out, `"skipped":1`)
}

func TestDecodeRowsCleanInputLogsNothing(t *testing.T) {
	buf := captureLog(t)
	skipped := DecodeRows("gate", []json.RawMessage{[]byte(`{"x":"a"}`)}, func(struct {
		X string `json:"x"`
	}) {
	})
	assert.Zero(t, skipped)
	assert.Empty(t, buf.String())
}

func TestErrorClassification(t *testing.T) {
	assert.ErrorIs(t, &HTTPError{Status: 401}, port.ErrAuth)
	assert.Equal(t, "auth", ErrorKind(&HTTPError{Status: 403}))
	assert.Equal(t, "http", ErrorKind(&HTTPError{Status: 502}))
	assert.Equal(t, "parse", ErrorKind(Decode("x", []byte("{"), &struct{}{})))
	assert.Equal(t, "api", ErrorKind(CheckCode("x", "5", "bad", []string{"0"})))
	assert.Equal(t, "auth", ErrorKind(CheckCode("x", "5", "bad", []string{"0"}, "5")))
	assert.NoError(t, CheckCode("x", "0", "", []string{"0"}))
	assert.Equal(t, "transport", ErrorKind(errors.New("boom")))
}

func TestDoReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`slow down`))
	}))
	defer srv.Close()

	client := NewHTTPClient(0)
	req, err := NewGet(t.Context(), srv.URL+"/ok")
	require.NoError(t, err)
	body, err := Do(client, req)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))

	req, err = NewGet(t.Context(), srv.URL+"/limited")
	require.NoError(t, err)
	_, err = Do(client, req)
	var herr *HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusTooManyRequests, herr.Status)
}

type fakeAdapter struct {
	Venue
	NoAssets
}

func (fakeAdapter) ParseRawTicker([]byte) (map[string]domain.TickerQuote, error) { return nil, nil }

func TestSetFirstAliasWins(t *testing.T) {
	a := fakeAdapter{Venue: Venue{ID: "alpha", AliasNames: []string{"shared"}, CacheKey: "alpha_spot"}}
	b := fakeAdapter{Venue: Venue{ID: "beta", AliasNames: []string{"shared"}, CacheKey: "beta_spot"}}
	set := NewSetOf(b, a, nil)

	names := []string{}
	for _, ad := range set.All() {
		names = append(names, ad.Name())
	}
	assert.Equal(t, []string{"alpha", "beta"}, names)

	got, ok := set.Resolve("SHARED")
	require.True(t, ok)
	assert.Equal(t, "beta", got.Name())
	_, ok = set.Resolve("gamma")
	assert.False(t, ok)
}
