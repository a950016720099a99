// Package metrics counts what each pipeline stage did during a run. The
// counts can be written as a node_exporter textfile for cron-driven runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tallyhq/tally/internal/model"
)

// Recorder holds one run's metrics on a private registry.
type Recorder struct {
	Registry *prometheus.Registry

	StageTransactions *prometheus.GaugeVec
	StageWarnings     *prometheus.CounterVec
	StageErrors       *prometheus.CounterVec
	LLMRequests       *prometheus.CounterVec
	LastRun           prometheus.Gauge
}

// NewRecorder creates a Recorder with all tally metrics registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		Registry: reg,
		StageTransactions: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tally_stage_transactions",
			Help: "Transactions output by each pipeline stage in the last run",
		}, []string{"stage"}),
		StageWarnings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_stage_warnings_total",
			Help: "Warnings recorded by each pipeline stage",
		}, []string{"stage"}),
		StageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_stage_errors_total",
			Help: "Errors recorded by each pipeline stage",
		}, []string{"stage"}),
		LLMRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_llm_requests_total",
			Help: "Tier 2 categorization calls by provider and outcome",
		}, []string{"provider", "outcome"}),
		LastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "tally_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
}

// Stage records the result of one stage.
func (r *Recorder) Stage(stage string, res model.StageResult) {
	r.StageTransactions.WithLabelValues(stage).Set(float64(len(res.Transactions)))
	r.StageWarnings.WithLabelValues(stage).Add(float64(len(res.Warnings)))
	r.StageErrors.WithLabelValues(stage).Add(float64(len(res.Errors)))
}

// LLMRequest counts a Tier 2 call.
func (r *Recorder) LLMRequest(provider, outcome string) {
	r.LLMRequests.WithLabelValues(provider, outcome).Inc()
}

// Finish stamps the run completion time.
func (r *Recorder) Finish() {
	r.LastRun.SetToCurrentTime()
}

// WriteTextfile writes all metrics in the text exposition format to path,
// atomically, for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
