package config

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"

	"github.com/prometheus/common/model"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "jenkins.url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateJenkins(&cfg.Jenkins)...)
	errs = append(errs, validateExporter(&cfg.Exporter)...)
	errs = append(errs, validateStartup(&cfg.Startup)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateJenkins validates the Jenkins client configuration.
func validateJenkins(cfg *JenkinsConfig) []FieldError {
	var errs []FieldError

	if cfg.URL == "" {
		errs = append(errs, FieldError{
			Field:   "jenkins.url",
			Message: "Jenkins URL is required",
		})
	} else if u, err := url.Parse(cfg.URL); err != nil {
		errs = append(errs, FieldError{
			Field:   "jenkins.url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, FieldError{
			Field:   "jenkins.url",
			Message: fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme),
		})
	} else if u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "jenkins.url",
			Message: "URL must include a host",
		})
	}

	if cfg.APIKey == "" {
		errs = append(errs, FieldError{
			Field:   "jenkins.api_key",
			Message: "metrics API key is required",
		})
	}

	if cfg.Password != "" && cfg.Username == "" {
		errs = append(errs, FieldError{
			Field:   "jenkins.username",
			Message: "username is required when a password is set",
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "jenkins.timeout",
			Message: "timeout must be positive",
		})
	}

	if cfg.PipelineConcurrency < 1 {
		errs = append(errs, FieldError{
			Field:   "jenkins.pipeline_concurrency",
			Message: "pipeline concurrency must be at least 1",
		})
	}

	return errs
}

// validateExporter validates the exporter endpoint and translation settings.
func validateExporter(cfg *ExporterConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "exporter.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "exporter.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	}

	if !strings.HasPrefix(cfg.MetricsPath, "/") {
		errs = append(errs, FieldError{
			Field:   "exporter.metrics_path",
			Message: "metrics path must start with '/'",
		})
	} else if reservedPaths[cfg.MetricsPath] {
		errs = append(errs, FieldError{
			Field:   "exporter.metrics_path",
			Message: fmt.Sprintf("metrics path %q collides with a built-in endpoint", cfg.MetricsPath),
		})
	}

	validModes := map[string]bool{"generic": true, "fixed": true}
	if !validModes[cfg.TimerMode] {
		errs = append(errs, FieldError{
			Field:   "exporter.timer_mode",
			Message: fmt.Sprintf("invalid mode %q: must be 'generic' or 'fixed'", cfg.TimerMode),
		})
	}
	if !validModes[cfg.HistogramMode] {
		errs = append(errs, FieldError{
			Field:   "exporter.histogram_mode",
			Message: fmt.Sprintf("invalid mode %q: must be 'generic' or 'fixed'", cfg.HistogramMode),
		})
	}

	if cfg.ScrapeTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "exporter.scrape_timeout",
			Message: "scrape timeout must be positive",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "exporter.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "exporter.write_timeout",
			Message: "write timeout must be positive",
		})
	} else if cfg.WriteTimeout > 0 && cfg.WriteTimeout < cfg.ScrapeTimeout {
		errs = append(errs, FieldError{
			Field:   "exporter.write_timeout",
			Message: fmt.Sprintf("write timeout %v is shorter than scrape timeout %v", cfg.WriteTimeout, cfg.ScrapeTimeout),
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "exporter.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	return errs
}

// reservedPaths are served by the exporter itself.
var reservedPaths = map[string]bool{
	"/":          true,
	"/-/healthy": true,
	"/-/ready":   true,
	"/version":   true,
}

// validateStartup validates the startup connectivity check settings.
func validateStartup(cfg *StartupConfig) []FieldError {
	var errs []FieldError

	if cfg.RetryInterval <= 0 {
		errs = append(errs, FieldError{
			Field:   "startup.retry_interval",
			Message: "retry interval must be positive",
		})
	}
	if cfg.MaxAttempts < 0 {
		errs = append(errs, FieldError{
			Field:   "startup.max_attempts",
			Message: "max attempts must be non-negative (0 retries forever)",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text' or 'console'", cfg.Logging.Format),
		})
	}

	if !model.IsValidLegacyMetricName(cfg.Metrics.Namespace) {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.namespace",
			Message: fmt.Sprintf("invalid metric namespace %q", cfg.Metrics.Namespace),
		})
	}

	if !sort.Float64sAreSorted(cfg.Metrics.DurationBuckets) {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.duration_buckets",
			Message: "buckets must be in increasing order",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never' or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
