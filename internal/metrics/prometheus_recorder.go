package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	stageResults  *prom.CounterVec
	buildOutcome  *prom.CounterVec
	themeResults  *prom.CounterVec
	fileResults   *prom.CounterVec
	bytesWritten  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "assetbuilder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "assetbuilder",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetbuilder",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetbuilder",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.themeResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetbuilder",
			Name:      "theme_results_total",
			Help:      "Theme bundle results by theme and outcome",
		}, []string{"theme", "result"})
		pr.fileResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetbuilder",
			Name:      "file_results_total",
			Help:      "Copied file results by kind and outcome",
		}, []string{"kind", "result"})
		pr.bytesWritten = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetbuilder",
			Name:      "bytes_written_total",
			Help:      "Bytes written to the destination tree by kind",
		}, []string{"kind"})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome, pr.themeResults, pr.fileResults, pr.bytesWritten)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}
func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}
func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncThemeResult(theme string, result ResultLabel) {
	if p == nil || p.themeResults == nil {
		return
	}
	p.themeResults.WithLabelValues(theme, string(result)).Inc()
}

func (p *PrometheusRecorder) IncFileResult(kind string, result ResultLabel) {
	if p == nil || p.fileResults == nil {
		return
	}
	p.fileResults.WithLabelValues(kind, string(result)).Inc()
}

func (p *PrometheusRecorder) AddBytesWritten(kind string, n int64) {
	if p == nil || p.bytesWritten == nil || n <= 0 {
		return
	}
	p.bytesWritten.WithLabelValues(kind).Add(float64(n))
}
