// Package metrics provides Prometheus metrics for the pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tokendict/internal/application/port"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	gatherer prometheus.Gatherer

	// Reconciliation
	CycleDuration *prometheus.HistogramVec
	CyclesTotal   *prometheus.CounterVec
	ViewTokens    *prometheus.GaugeVec
	AssetRecords  *prometheus.GaugeVec

	// DEX
	DexBatches *prometheus.CounterVec
	DexDelay   prometheus.Gauge

	// Live prices
	OverlayMatched prometheus.Counter
	PollerErrors   *prometheus.CounterVec
}

// New registers every metric on reg. A nil reg uses a fresh registry.
func New(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "tokendict"
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		CycleDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of reconciliation cycles by outcome",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"outcome"}),
		CyclesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "cycles_total",
			Help:      "Total number of reconciliation cycles by outcome",
		}, []string{"outcome"}),
		ViewTokens: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "view_tokens",
			Help:      "Number of tokens in each published view",
		}, []string{"view"}),
		AssetRecords: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "assets",
			Name:      "records",
			Help:      "Asset metadata records fetched per exchange in the last cycle",
		}, []string{"exchange"}),

		DexBatches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dex",
			Name:      "batches_total",
			Help:      "DEX price batches by outcome",
		}, []string{"outcome"}),
		DexDelay: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dex",
			Name:      "batch_delay_seconds",
			Help:      "Current delay between DEX batches",
		}),

		OverlayMatched: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "overlay",
			Name:      "matched_total",
			Help:      "Exchange entries updated from raw tickers",
		}),
		PollerErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "errors_total",
			Help:      "Raw ticker poll failures per exchange",
		}, []string{"exchange"}),
	}
}

func (m *Metrics) ObserveCycle(outcome string, elapsed time.Duration) {
	m.CycleDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	m.CyclesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetViewSize(view string, tokens int) {
	m.ViewTokens.WithLabelValues(view).Set(float64(tokens))
}

func (m *Metrics) SetAssetRecords(exchange string, records int) {
	m.AssetRecords.WithLabelValues(exchange).Set(float64(records))
}

func (m *Metrics) AddDexBatches(outcome string, n int) {
	if n > 0 {
		m.DexBatches.WithLabelValues(outcome).Add(float64(n))
	}
}

func (m *Metrics) SetDexDelay(d time.Duration) {
	m.DexDelay.Set(d.Seconds())
}

func (m *Metrics) AddOverlayMatched(n int) {
	if n > 0 {
		m.OverlayMatched.Add(float64(n))
	}
}

func (m *Metrics) IncPollerError(exchange string) {
	m.PollerErrors.WithLabelValues(exchange).Inc()
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

var _ port.Metrics = (*Metrics)(nil)
