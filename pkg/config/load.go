package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "JENKINS_EXPORTER_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention JENKINS_EXPORTER_SECTION_FIELD (e.g., JENKINS_EXPORTER_JENKINS_URL).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file, so the exporter can be configured from the
// environment and flags alone.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply environment variable overrides
// 3. Apply default values
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadUnvalidated(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadUnvalidated reads the file (if any), applies environment overrides and
// defaults, and stops before validation so callers can layer command-line
// flags on top.
func LoadUnvalidated(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		var err error
		if cfg, err = readConfig(path); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)

	return cfg, nil
}

// readConfig parses the YAML file at path. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func readConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	return &cfg, nil
}

// envOverride binds one environment variable to a config field.
type envOverride struct {
	name  string
	apply func(val string) error
}

func stringVar(dst *string) func(string) error {
	return func(val string) error {
		*dst = val
		return nil
	}
}

func durationVar(dst *time.Duration) func(string) error {
	return func(val string) error {
		d, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

func intVar(dst *int) func(string) error {
	return func(val string) error {
		i, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		*dst = i
		return nil
	}
}

func boolVar(dst *bool) func(string) error {
	return func(val string) error {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func boolPtrVar(dst **bool) func(string) error {
	return func(val string) error {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		*dst = &b
		return nil
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. A value that cannot be parsed is reported as a FieldError
// naming the variable.
func applyEnvOverrides(cfg *Config) error {
	overrides := []envOverride{
		// Jenkins overrides
		{"JENKINS_URL", stringVar(&cfg.Jenkins.URL)},
		{"JENKINS_API_KEY", stringVar(&cfg.Jenkins.APIKey)},
		{"JENKINS_USERNAME", stringVar(&cfg.Jenkins.Username)},
		{"JENKINS_PASSWORD", stringVar(&cfg.Jenkins.Password)},
		{"JENKINS_TIMEOUT", durationVar(&cfg.Jenkins.Timeout)},
		{"JENKINS_INSECURE_SKIP_VERIFY", boolVar(&cfg.Jenkins.InsecureSkipVerify)},
		{"JENKINS_PIPELINE_CONCURRENCY", intVar(&cfg.Jenkins.PipelineConcurrency)},

		// Exporter overrides
		{"EXPORTER_LISTEN_ADDRESS", stringVar(&cfg.Exporter.ListenAddress)},
		{"EXPORTER_METRICS_PATH", stringVar(&cfg.Exporter.MetricsPath)},
		{"EXPORTER_SCRAPE_TIMEOUT", durationVar(&cfg.Exporter.ScrapeTimeout)},
		{"EXPORTER_TIMER_MODE", stringVar(&cfg.Exporter.TimerMode)},
		{"EXPORTER_HISTOGRAM_MODE", stringVar(&cfg.Exporter.HistogramMode)},
		{"EXPORTER_OMIT_TIMESTAMPS", boolVar(&cfg.Exporter.OmitTimestamps)},
		{"EXPORTER_EXIT_ON_METRICS_FAILURE", boolPtrVar(&cfg.Exporter.ExitOnMetricsFailure)},

		// Startup overrides
		{"STARTUP_RETRY_INTERVAL", durationVar(&cfg.Startup.RetryInterval)},
		{"STARTUP_MAX_ATTEMPTS", intVar(&cfg.Startup.MaxAttempts)},

		// Telemetry overrides
		{"TELEMETRY_LOGGING_LEVEL", stringVar(&cfg.Telemetry.Logging.Level)},
		{"TELEMETRY_LOGGING_FORMAT", stringVar(&cfg.Telemetry.Logging.Format)},
		{"TELEMETRY_METRICS_NAMESPACE", stringVar(&cfg.Telemetry.Metrics.Namespace)},
		{"TELEMETRY_TRACING_ENABLED", boolVar(&cfg.Telemetry.Tracing.Enabled)},
		{"TELEMETRY_TRACING_ENDPOINT", stringVar(&cfg.Telemetry.Tracing.Endpoint)},
	}

	var errs []FieldError
	for _, o := range overrides {
		val, ok := os.LookupEnv(EnvPrefix + o.name)
		if !ok || val == "" {
			continue
		}
		if err := o.apply(val); err != nil {
			errs = append(errs, FieldError{
				Field:   EnvPrefix + o.name,
				Message: fmt.Sprintf("invalid value %q: %v", val, err),
			})
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
