package poller

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokendict/internal/application/port"
	"tokendict/internal/infrastructure/exchange"
	"tokendict/internal/infrastructure/exchange/gate"
	"tokendict/internal/infrastructure/tickercache"
)

type countingMetrics struct {
	port.NopMetrics
	pollerErrors atomic.Int32
}

func (m *countingMetrics) IncPollerError(string) { m.pollerErrors.Add(1) }

const gateTickers = `[{"currency_pair":"TKX_USDT","last":"1.5","base_volume":"2","quote_volume":"3"}]`

func TestPollStoresParsableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, gateTickers)
	}))
	defer srv.Close()

	cache := tickercache.NewMemory()
	p := New(gate.New(exchange.Options{TickerURL: srv.URL}), cache, nil, Config{})
	require.NoError(t, p.Poll(t.Context()))

	got, ok, err := cache.Get(t.Context(), "gate_spot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, gateTickers, string(got))
	assert.Equal(t, "gate", p.Name())
}

func TestPollRejectsBadResponses(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"garbage": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `<html>maintenance</html>`)
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			cache := tickercache.NewMemory()
			p := New(gate.New(exchange.Options{TickerURL: srv.URL}), cache, nil, Config{})
			require.Error(t, p.Poll(t.Context()))

			_, ok, _ := cache.Get(t.Context(), "gate_spot")
			assert.False(t, ok)
		})
	}
}

func TestRunPollsUntilCanceled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, gateTickers)
	}))
	defer srv.Close()

	cache := tickercache.NewMemory()
	m := &countingMetrics{}
	p := New(gate.New(exchange.Options{TickerURL: srv.URL}), cache, m, Config{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok, _ := cache.Get(t.Context(), "gate_spot")
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
	assert.Equal(t, int32(1), m.pollerErrors.Load())
}
