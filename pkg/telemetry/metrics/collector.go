package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mercator-hq/jenkins-exporter/pkg/config"
	"mercator-hq/jenkins-exporter/pkg/jenkins"
	"mercator-hq/jenkins-exporter/pkg/translate"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
)

// Collector owns the exporter's own metrics. It records fetches made by the
// Jenkins client, scrape cycles run by the exporter and configuration reloads.
//
// Collector satisfies jenkins.Observer.
type Collector struct {
	config   *config.MetricsConfig
	registry prometheus.Registerer

	// Scrape cycle metrics
	scrapeMetrics *ScrapeMetrics

	// Jenkins API fetch metrics
	fetchMetrics *FetchMetrics

	// Configuration reload outcomes
	reloads *prometheus.CounterVec
}

// NewCollector creates the self-metrics and registers them with registry. If
// registry is nil, a new private registry is used.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)
//	client, _ := jenkins.NewClient(cfg.Jenkins.ClientConfig(), jenkins.WithObserver(collector))
func NewCollector(cfg *config.MetricsConfig, registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets()
	}

	c := &Collector{
		config:        cfg,
		registry:      registry,
		scrapeMetrics: NewScrapeMetrics(cfg, registry),
		fetchMetrics:  NewFetchMetrics(cfg, registry),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of configuration reloads by result",
			},
			[]string{"result"},
		),
	}
	registry.MustRegister(c.reloads)

	return c
}

// RegisterRuntime adds the Go runtime and process collectors to registry,
// plus <program>_build_info carrying the version linked into the binary.
func RegisterRuntime(registry prometheus.Registerer, program string) {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		versioncollector.NewCollector(program),
	)
}

// ObserveFetch records one Jenkins API call. A fetch of the metrics endpoint
// also sets the up gauge.
func (c *Collector) ObserveFetch(source jenkins.Source, duration time.Duration, err error) {
	c.fetchMetrics.Record(source, duration, err)
	if source == jenkins.SourceMetrics {
		c.scrapeMetrics.SetUp(err == nil)
	}
}

// ObserveScrape records a completed scrape cycle.
func (c *Collector) ObserveScrape(duration time.Duration, err error) {
	c.scrapeMetrics.RecordScrape(duration, err)
}

// ObserveDrops counts families and samples rejected while merging.
func (c *Collector) ObserveDrops(drops []translate.Drop) {
	for _, d := range drops {
		c.scrapeMetrics.RecordDrop(d.Reason)
	}
}

// RecordReload records the outcome of a configuration reload.
func (c *Collector) RecordReload(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.reloads.WithLabelValues(result).Inc()
}

// errorType classifies a fetch error for the errors counter.
func errorType(err error) string {
	var parseErr *jenkins.ParseError
	if errors.As(err, &parseErr) {
		return "parse"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var fetchErr *jenkins.FetchError
	if !errors.As(err, &fetchErr) {
		return "other"
	}
	switch fetchErr.StatusCode {
	case 0:
		return "network"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "auth"
	default:
		return "http"
	}
}
