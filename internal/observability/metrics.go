package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// conversion pipeline.
type Metrics struct {
	PointsExtracted  prometheus.Counter
	RecordsSampled   prometheus.Counter
	RowsExported     prometheus.Counter
	RecordsPublished prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	PointBatchSize    prometheus.Histogram
	FieldLoadDuration prometheus.Histogram
	SampleDuration    prometheus.Histogram
	LoadDuration      *prometheus.HistogramVec // label: sink={csv,kafka,scene}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PointsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_etl",
			Name:      "points_extracted_total",
			Help:      "Total gauge points read from the vector source.",
		}),
		RecordsSampled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_etl",
			Name:      "records_sampled_total",
			Help:      "Total points sampled against the depth field.",
		}),
		RowsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_etl",
			Name:      "rows_exported_total",
			Help:      "Total data rows written to CSV output.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_etl",
			Name:      "records_published_total",
			Help:      "Total water-source records published to the Kafka sink.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_etl",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_etl",
			Name:      "pipeline_running",
			Help:      "1 while a conversion run is active, 0 otherwise.",
		}),
		PointBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_etl",
			Name:      "point_batch_size",
			Help:      "Number of gauge points per conversion run.",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 2500, 5000},
		}),
		FieldLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_etl",
			Name:      "field_load_duration_seconds",
			Help:      "Duration of loading the gridded depth field into memory.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SampleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_etl",
			Name:      "sample_duration_seconds",
			Help:      "Duration of the sample-and-normalize transform.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flood_etl",
			Name:      "load_duration_seconds",
			Help:      "Duration of loading results into a sink, by sink kind.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}, []string{"sink"}),
	}

	prometheus.MustRegister(
		m.PointsExtracted,
		m.RecordsSampled,
		m.RowsExported,
		m.RecordsPublished,
		m.TransformErrors,
		m.PipelineRunning,
		m.PointBatchSize,
		m.FieldLoadDuration,
		m.SampleDuration,
		m.LoadDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PointsExtracted:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_etl", Name: "points_extracted_total"}),
		RecordsSampled:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_etl", Name: "records_sampled_total"}),
		RowsExported:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_etl", Name: "rows_exported_total"}),
		RecordsPublished:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_etl", Name: "records_published_total"}),
		TransformErrors:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_etl", Name: "transform_errors_total"}),
		PipelineRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flood_etl", Name: "pipeline_running"}),
		PointBatchSize:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flood_etl", Name: "point_batch_size"}),
		FieldLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flood_etl", Name: "field_load_duration_seconds"}),
		SampleDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flood_etl", Name: "sample_duration_seconds"}),
		LoadDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "flood_etl", Name: "load_duration_seconds"}, []string{"sink"}),
	}
}
