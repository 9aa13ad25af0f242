package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	m.ObserveCycle("ok", 2*time.Second)
	m.ObserveCycle("ok", time.Second)
	m.SetViewSize("dict", 42)
	m.AddDexBatches("rate_limited", 2)
	m.AddDexBatches("failed", 0)
	m.SetDexDelay(150 * time.Millisecond)
	m.AddOverlayMatched(7)
	m.IncPollerError("gate")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues("ok")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.ViewTokens.WithLabelValues("dict")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DexBatches.WithLabelValues("rate_limited")))
	assert.InDelta(t, 0.15, testutil.ToFloat64(m.DexDelay), 1e-9)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.OverlayMatched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollerErrors.WithLabelValues("gate")))
}

func TestMetricsHandler(t *testing.T) {
	m := New("", nil)
	m.SetAssetRecords("binance", 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tokendict_assets_records{exchange="binance"} 3`)
}
