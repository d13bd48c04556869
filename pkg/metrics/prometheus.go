package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	rowsIngested   *prometheus.CounterVec
	rowsDropped    *prometheus.CounterVec
	ingestErrors   *prometheus.CounterVec
	ingestDuration prometheus.Histogram
	datasetSize    *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		rowsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketlens_rows_ingested_total",
				Help: "Total number of rows accepted into the dataset",
			},
			[]string{"kind"},
		),
		rowsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketlens_rows_dropped_total",
				Help: "Total number of rows excluded by shape filtering",
			},
			[]string{"kind"},
		),
		ingestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketlens_ingest_errors_total",
				Help: "Total number of rejected ingestion batches",
			},
			[]string{"reason"},
		),
		ingestDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "marketlens_ingest_duration_seconds",
				Help:    "Duration of accepted ingestion batches in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		datasetSize: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketlens_dataset_rows",
				Help: "Rows in the currently loaded dataset per kind",
			},
			[]string{"kind"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketlens_query_duration_seconds",
				Help:    "Duration of query engine operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRowsIngested records rows accepted for a kind.
func (r *Recorder) RecordRowsIngested(kind string, n int) {
	r.rowsIngested.WithLabelValues(kind).Add(float64(n))
}

// RecordRowsDropped records rows excluded by shape filtering.
func (r *Recorder) RecordRowsDropped(kind string, n int) {
	r.rowsDropped.WithLabelValues(kind).Add(float64(n))
}

// RecordIngestError records one rejected ingestion batch.
func (r *Recorder) RecordIngestError(reason string) {
	r.ingestErrors.WithLabelValues(reason).Inc()
}

// RecordIngestDuration records how long an accepted batch took.
func (r *Recorder) RecordIngestDuration(seconds float64) {
	r.ingestDuration.Observe(seconds)
}

// RecordDatasetSize records the current dataset size per kind.
func (r *Recorder) RecordDatasetSize(kind string, n int) {
	r.datasetSize.WithLabelValues(kind).Set(float64(n))
}

// RecordQueryLatency records query engine operation latency in seconds.
func (r *Recorder) RecordQueryLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
