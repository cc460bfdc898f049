package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wildfire_risk"

// Metrics holds the Prometheus counters and histograms for risk assessments.
type Metrics struct {
	Assessments        *prometheus.CounterVec // labels: verdict={within_radius,safe}
	AssessmentErrors   *prometheus.CounterVec // labels: stage={input,weather,model,fires,evaluate}
	AssessmentDuration prometheus.Histogram

	// Upstream lookups.
	LookupCache      *prometheus.CounterVec   // labels: lookup={weather,fires}, result={hit,miss,error}
	UpstreamRequests *prometheus.CounterVec   // labels: upstream={openmeteo,firms}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: upstream

	// Event publishing.
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Assessments,
		m.AssessmentErrors,
		m.AssessmentDuration,
		m.LookupCache,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.EventsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Completed risk assessments by verdict.",
		}, []string{"verdict"}),
		AssessmentErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessment_errors_total",
			Help:      "Failed risk assessments by the stage that failed.",
		}, []string{"stage"}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assessment_duration_seconds",
			Help:      "End-to-end duration of a risk assessment including upstream lookups.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		LookupCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_cache_total",
			Help:      "Lookup cache results by lookup kind.",
		}, []string{"lookup", "result"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by upstream and outcome.",
		}, []string{"upstream", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"upstream"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Assessment events written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Assessment events that failed to publish.",
		}),
	}
}
