package config

import (
	"time"

	"mercator-hq/jenkins-exporter/pkg/jenkins"
)

// Config is the root configuration structure for the Jenkins exporter.
type Config struct {
	// Jenkins contains the connection settings for the Jenkins server
	// being exported.
	Jenkins JenkinsConfig `yaml:"jenkins"`

	// Exporter contains the HTTP endpoint and translation settings.
	Exporter ExporterConfig `yaml:"exporter"`

	// Startup controls the connectivity check run before serving.
	Startup StartupConfig `yaml:"startup"`

	// Telemetry contains configuration for the exporter's own logging and
	// metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// JenkinsConfig contains configuration for the Jenkins API client.
type JenkinsConfig struct {
	// URL is the base URL of the Jenkins server (e.g., "http://jenkins:8080").
	// Required.
	URL string `yaml:"url"`

	// APIKey is the metrics plugin access key. Required.
	APIKey string `yaml:"api_key"`

	// Username enables HTTP basic auth on every request when set.
	Username string `yaml:"username"`

	// Password is the basic auth password or API token.
	Password string `yaml:"password"`

	// Timeout bounds each HTTP request to Jenkins.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// PipelineConcurrency limits concurrent pipeline stage fetches.
	// Default: 4
	PipelineConcurrency int `yaml:"pipeline_concurrency"`
}

// ClientConfig converts the section into the Jenkins client's configuration.
func (c JenkinsConfig) ClientConfig() jenkins.Config {
	return jenkins.Config{
		URL:                c.URL,
		APIKey:             c.APIKey,
		Username:           c.Username,
		Password:           c.Password,
		Timeout:            c.Timeout,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
}

// ExporterConfig contains configuration for the exporter HTTP endpoint and
// the translation of Jenkins metrics.
type ExporterConfig struct {
	// ListenAddress is the address the exporter serves on.
	// Format: "host:port" or ":port".
	// Default: ":9118"
	ListenAddress string `yaml:"listen_address"`

	// MetricsPath is the path serving the exposition.
	// Default: "/metrics"
	MetricsPath string `yaml:"metrics_path"`

	// ScrapeTimeout bounds one scrape cycle including all Jenkins fetches.
	// Default: 30s
	ScrapeTimeout time.Duration `yaml:"scrape_timeout"`

	// TimerMode selects how timers are expanded: "generic" or "fixed".
	// Default: "generic"
	TimerMode string `yaml:"timer_mode"`

	// HistogramMode selects how histograms are expanded: "generic" or "fixed".
	// Default: "generic"
	HistogramMode string `yaml:"histogram_mode"`

	// OmitTimestamps leaves the jenkins_job_*_timestamp_seconds families
	// without samples. Families without samples are not exposed, so those
	// names disappear from the scrape output.
	OmitTimestamps bool `yaml:"omit_timestamps"`

	// ExitOnMetricsFailure stops the process when the metrics endpoint
	// cannot be fetched.
	// Default: true
	ExitOnMetricsFailure *bool `yaml:"exit_on_metrics_failure"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must leave room for a full scrape.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ExitOnFailure reports whether a metrics endpoint failure stops the process.
func (c ExporterConfig) ExitOnFailure() bool {
	if c.ExitOnMetricsFailure == nil {
		return DefaultExitOnMetricsFailure
	}
	return *c.ExitOnMetricsFailure
}

// StartupConfig controls the connectivity check performed before serving.
type StartupConfig struct {
	// RetryInterval is the fixed wait between failed checks.
	// Default: 30s
	RetryInterval time.Duration `yaml:"retry_interval"`

	// MaxAttempts bounds the number of checks. Zero retries forever.
	MaxAttempts int `yaml:"max_attempts"`
}

// TelemetryConfig contains configuration for the exporter's own telemetry.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains self-metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains configuration for structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json", "text", "console".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains configuration for the exporter's self-metrics.
type MetricsConfig struct {
	// Namespace prefixes every self-metric.
	// Default: "jenkins_exporter"
	Namespace string `yaml:"namespace"`

	// DurationBuckets are the histogram buckets, in seconds, for scrape and
	// fetch durations.
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration. Spans cover each
// scrape and every request made to Jenkins.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of scrapes to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address (e.g., "localhost:4317").
	// Required when tracing is enabled.
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "jenkins_exporter"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
