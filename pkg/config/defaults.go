package config

import "time"

// Default values for configuration fields.
const (
	// Jenkins defaults
	DefaultJenkinsTimeout      = 10 * time.Second
	DefaultPipelineConcurrency = 4

	// Exporter defaults
	DefaultListenAddress        = ":9118"
	DefaultMetricsPath          = "/metrics"
	DefaultScrapeTimeout        = 30 * time.Second
	DefaultTimerMode            = "generic"
	DefaultHistogramMode        = "generic"
	DefaultExitOnMetricsFailure = true
	DefaultReadTimeout          = 30 * time.Second
	DefaultWriteTimeout         = 60 * time.Second
	DefaultShutdownTimeout      = 10 * time.Second

	// Startup defaults
	DefaultStartupRetryInterval = 30 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultMetricsNamespace    = "jenkins_exporter"
	DefaultTracingSampler      = "ratio"
	DefaultTracingSamplingRate = 1.0
	DefaultTracingServiceName  = "jenkins_exporter"
	DefaultTracingTimeout      = 10 * time.Second
)

// DefaultDurationBuckets returns the self-metrics histogram buckets, sized for
// Jenkins calls that take from tens of milliseconds to the scrape timeout.
func DefaultDurationBuckets() []float64 {
	return []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Jenkins defaults
	if cfg.Jenkins.Timeout == 0 {
		cfg.Jenkins.Timeout = DefaultJenkinsTimeout
	}
	if cfg.Jenkins.PipelineConcurrency == 0 {
		cfg.Jenkins.PipelineConcurrency = DefaultPipelineConcurrency
	}

	// Exporter defaults
	if cfg.Exporter.ListenAddress == "" {
		cfg.Exporter.ListenAddress = DefaultListenAddress
	}
	if cfg.Exporter.MetricsPath == "" {
		cfg.Exporter.MetricsPath = DefaultMetricsPath
	}
	if cfg.Exporter.ScrapeTimeout == 0 {
		cfg.Exporter.ScrapeTimeout = DefaultScrapeTimeout
	}
	if cfg.Exporter.TimerMode == "" {
		cfg.Exporter.TimerMode = DefaultTimerMode
	}
	if cfg.Exporter.HistogramMode == "" {
		cfg.Exporter.HistogramMode = DefaultHistogramMode
	}
	// ExitOnMetricsFailure defaults to true, so nil means "not set"
	if cfg.Exporter.ExitOnMetricsFailure == nil {
		v := DefaultExitOnMetricsFailure
		cfg.Exporter.ExitOnMetricsFailure = &v
	}
	if cfg.Exporter.ReadTimeout == 0 {
		cfg.Exporter.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Exporter.WriteTimeout == 0 {
		cfg.Exporter.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Exporter.ShutdownTimeout == 0 {
		cfg.Exporter.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Startup defaults
	if cfg.Startup.RetryInterval == 0 {
		cfg.Startup.RetryInterval = DefaultStartupRetryInterval
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = DefaultDurationBuckets()
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
}
