package metrics

import "github.com/prometheus/client_golang/prometheus"

// Enrichment pipeline Prometheus metrics.
var (
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "enrichd",
			Name:      "pipeline_runs_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"status"}, // "completed" / "failed" / "empty"
	)

	PipelineStageFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "enrichd",
			Name:      "pipeline_stage_failures_total",
			Help:      "Pipeline failures broken down by stage",
		},
		[]string{"stage"},
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "enrichd",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Per-stage pipeline duration in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	DocumentsIndexedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "enrichd",
			Name:      "documents_indexed_total",
			Help:      "Total number of documents committed to the index sink",
		},
	)

	TopicsAssignedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "enrichd",
			Name:      "topics_assigned_total",
			Help:      "Topic assignments broken down by label",
		},
		[]string{"label"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineRunsTotal)
	prometheus.MustRegister(PipelineStageFailuresTotal)
	prometheus.MustRegister(PipelineStageDuration)
	prometheus.MustRegister(DocumentsIndexedTotal)
	prometheus.MustRegister(TopicsAssignedTotal)
	pipelineMetricsRegistered = true
}
