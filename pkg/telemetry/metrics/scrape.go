package metrics

import (
	"time"

	"mercator-hq/jenkins-exporter/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ScrapeMetrics tracks scrape cycles.
//
// Metrics:
//   - jenkins_exporter_scrapes_total: Scrape cycles by result
//   - jenkins_exporter_scrape_duration_seconds: Scrape cycle duration
//   - jenkins_exporter_up: Whether the last metrics endpoint fetch succeeded
//   - jenkins_exporter_dropped_families_total: Families or samples rejected by reason
type ScrapeMetrics struct {
	scrapes  *prometheus.CounterVec
	duration prometheus.Histogram
	up       prometheus.Gauge
	dropped  *prometheus.CounterVec
}

// NewScrapeMetrics creates and registers scrape metrics with the provided registry.
func NewScrapeMetrics(cfg *config.MetricsConfig, registry prometheus.Registerer) *ScrapeMetrics {
	sm := &ScrapeMetrics{
		scrapes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "scrapes_total",
				Help:      "Total number of scrape cycles by result",
			},
			[]string{"result"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "scrape_duration_seconds",
				Help:      "Duration of scrape cycles in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		up: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "up",
				Help:      "Whether the last Jenkins metrics endpoint fetch succeeded (1=yes, 0=no)",
			},
		),

		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "dropped_families_total",
				Help:      "Total number of metric families or samples dropped during translation by reason",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(
		sm.scrapes,
		sm.duration,
		sm.up,
		sm.dropped,
	)

	return sm
}

// RecordScrape records one scrape cycle.
func (sm *ScrapeMetrics) RecordScrape(duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	sm.scrapes.WithLabelValues(result).Inc()
	sm.duration.Observe(duration.Seconds())
}

// SetUp sets the up gauge.
func (sm *ScrapeMetrics) SetUp(up bool) {
	value := 0.0
	if up {
		value = 1.0
	}
	sm.up.Set(value)
}

// RecordDrop counts one dropped family or sample.
func (sm *ScrapeMetrics) RecordDrop(reason string) {
	sm.dropped.WithLabelValues(reason).Inc()
}
