package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandlerConfig configures the metrics endpoint.
type HandlerConfig struct {
	// Timeout bounds one gather. Zero means no limit beyond the server's.
	Timeout time.Duration

	// Logger receives gather errors
	Logger *slog.Logger
}

// Handler returns an HTTP handler serving everything gathered from registry.
//
// A collection error fails the whole request with HTTP 500 so a Jenkins
// outage reads as a failed scrape instead of an empty one. The handler's own
// request and error counters are registered with registry.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	registry.MustRegister(exp)
//	http.Handle("/metrics", metrics.Handler(registry, metrics.HandlerConfig{}))
func Handler(registry *prometheus.Registry, cfg HandlerConfig) http.Handler {
	opts := promhttp.HandlerOpts{
		// Enable OpenMetrics encoding when the scraper asks for it
		EnableOpenMetrics: true,

		// Timeout for collecting metrics
		Timeout: cfg.Timeout,

		ErrorHandling: promhttp.HTTPErrorOnError,

		Registry: registry,
	}
	if cfg.Logger != nil {
		opts.ErrorLog = slog.NewLogLogger(cfg.Logger.Handler(), slog.LevelError)
	}

	return promhttp.InstrumentMetricHandler(registry, promhttp.HandlerFor(registry, opts))
}
