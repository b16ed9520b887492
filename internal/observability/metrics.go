package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// bulletin refresh pipeline.
type Metrics struct {
	DocumentsProcessed prometheus.Counter
	DocumentsEmpty     prometheus.Counter
	RefreshErrors      prometheus.Counter
	RefreshDuration    prometheus.Histogram
	PipelineRunning    prometheus.Gauge

	// Extraction metrics.
	CandidatesExtracted *prometheus.CounterVec // label: heuristic

	// Aggregate state after the latest refresh.
	StationsAggregated prometheus.Gauge
	HistorySamples     prometheus.Gauge
	GeocodeMatched     prometheus.Gauge

	StationsPublished prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DocumentsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balneabilidade",
			Name:      "documents_processed_total",
			Help:      "Total bulletin documents fed through extraction.",
		}),
		DocumentsEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balneabilidade",
			Name:      "documents_empty_total",
			Help:      "Total documents that yielded zero candidates (layout drift signal).",
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balneabilidade",
			Name:      "refresh_errors_total",
			Help:      "Total failed refresh cycles.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "balneabilidade",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-extract-project cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "balneabilidade",
			Name:      "pipeline_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		CandidatesExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "balneabilidade",
			Name:      "candidates_extracted_total",
			Help:      "Candidate records extracted, by heuristic.",
		}, []string{"heuristic"}),
		StationsAggregated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "balneabilidade",
			Name:      "stations_aggregated",
			Help:      "Stations in the aggregate after the latest refresh.",
		}),
		HistorySamples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "balneabilidade",
			Name:      "history_samples",
			Help:      "Total unique history samples across all stations.",
		}),
		GeocodeMatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "balneabilidade",
			Name:      "geocode_matched",
			Help:      "Stations with coordinates after the latest refresh.",
		}),
		StationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balneabilidade",
			Name:      "stations_published_total",
			Help:      "Total station snapshots published to Kafka.",
		}),
	}

	prometheus.MustRegister(
		m.DocumentsProcessed,
		m.DocumentsEmpty,
		m.RefreshErrors,
		m.RefreshDuration,
		m.PipelineRunning,
		m.CandidatesExtracted,
		m.StationsAggregated,
		m.HistorySamples,
		m.GeocodeMatched,
		m.StationsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DocumentsProcessed:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "balneabilidade", Name: "documents_processed_total"}),
		DocumentsEmpty:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "balneabilidade", Name: "documents_empty_total"}),
		RefreshErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "balneabilidade", Name: "refresh_errors_total"}),
		RefreshDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "balneabilidade", Name: "refresh_duration_seconds"}),
		PipelineRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "balneabilidade", Name: "pipeline_running"}),
		CandidatesExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "balneabilidade", Name: "candidates_extracted_total"}, []string{"heuristic"}),
		StationsAggregated:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "balneabilidade", Name: "stations_aggregated"}),
		HistorySamples:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "balneabilidade", Name: "history_samples"}),
		GeocodeMatched:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "balneabilidade", Name: "geocode_matched"}),
		StationsPublished:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "balneabilidade", Name: "stations_published_total"}),
	}
}
