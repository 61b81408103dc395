package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration  *prom.HistogramVec
	stageResults   *prom.CounterVec
	manifestWrites *prom.CounterVec
	checkouts      *prom.CounterVec
	projects       *prom.CounterVec
	runDuration    prom.Gauge
}

// NewPrometheusRecorder constructs and registers crater metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "crater",
			Name:      "stage_duration_seconds",
			Help:      "Duration of resolve, stage and patch steps",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "crater",
			Name:      "stage_results_total",
			Help:      "Step result counts by outcome",
		}, []string{"stage", "result"}),
		manifestWrites: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "crater",
			Name:      "manifest_writes_total",
			Help:      "Manifest writes by manifest kind and result",
		}, []string{"kind", "result"}),
		checkouts: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "crater",
			Name:      "checkouts_total",
			Help:      "Repository checkouts by outcome (cloned, reused, failed)",
		}, []string{"outcome"}),
		projects: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "crater",
			Name:      "project_outcomes_total",
			Help:      "Projects processed by final result",
		}, []string{"result"}),
		runDuration: prom.NewGauge(prom.GaugeOpts{
			Namespace: "crater",
			Name:      "last_run_duration_seconds",
			Help:      "Wall clock duration of the last run",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.manifestWrites, pr.checkouts, pr.projects, pr.runDuration)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncManifestWrite(kind string, success bool) {
	if p == nil {
		return
	}
	res := ResultFailed
	if success {
		res = ResultSuccess
	}
	p.manifestWrites.WithLabelValues(kind, string(res)).Inc()
}

func (p *PrometheusRecorder) IncCheckout(outcome string) {
	if p == nil {
		return
	}
	p.checkouts.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncProjectOutcome(result ResultLabel) {
	if p == nil {
		return
	}
	p.projects.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Set(d.Seconds())
}

// WriteTextfile writes every metric in reg to path in the Prometheus text
// exposition format. The write goes through a temp file and rename.
func WriteTextfile(path string, reg *prom.Registry) error {
	return prom.WriteToTextfile(path, reg)
}
