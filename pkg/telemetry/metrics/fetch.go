package metrics

import (
	"time"

	"mercator-hq/jenkins-exporter/pkg/config"
	"mercator-hq/jenkins-exporter/pkg/jenkins"

	"github.com/prometheus/client_golang/prometheus"
)

// FetchMetrics tracks calls to the Jenkins API.
//
// Metrics:
//   - jenkins_exporter_fetch_duration_seconds: Call latency by source
//   - jenkins_exporter_fetch_errors_total: Failed calls by source and error type
type FetchMetrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewFetchMetrics creates and registers fetch metrics with the provided registry.
func NewFetchMetrics(cfg *config.MetricsConfig, registry prometheus.Registerer) *FetchMetrics {
	fm := &FetchMetrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of Jenkins API calls in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"source"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "fetch_errors_total",
				Help:      "Total number of failed Jenkins API calls by source and type",
			},
			[]string{"source", "type"},
		),
	}

	registry.MustRegister(fm.duration, fm.errors)

	return fm
}

// Record records one API call.
//
// Error types:
//   - "network": the request never completed
//   - "timeout": the request context expired
//   - "auth": Jenkins answered 401 or 403
//   - "http": any other non-2xx answer
//   - "parse": the body could not be decoded
func (fm *FetchMetrics) Record(source jenkins.Source, duration time.Duration, err error) {
	fm.duration.WithLabelValues(string(source)).Observe(duration.Seconds())
	if err != nil {
		fm.errors.WithLabelValues(string(source), errorType(err)).Inc()
	}
}
