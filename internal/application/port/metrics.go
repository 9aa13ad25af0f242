package port

import "time"

// Metrics 流水线指标出口；infrastructure/metrics 提供 prometheus 实现
type Metrics interface {
	ObserveCycle(outcome string, elapsed time.Duration)
	SetViewSize(view string, tokens int)
	SetAssetRecords(exchange string, records int)
	AddDexBatches(outcome string, n int)
	SetDexDelay(d time.Duration)
	AddOverlayMatched(n int)
	IncPollerError(exchange string)
}

// NopMetrics 不记录任何指标
type NopMetrics struct{}

func (NopMetrics) ObserveCycle(string, time.Duration) {}
func (NopMetrics) SetViewSize(string, int)            {}
func (NopMetrics) SetAssetRecords(string, int)        {}
func (NopMetrics) AddDexBatches(string, int)          {}
func (NopMetrics) SetDexDelay(time.Duration)          {}
func (NopMetrics) AddOverlayMatched(int)              {}
func (NopMetrics) IncPollerError(string)              {}
