package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
jenkins:
  url: "https://ci.example.com"
  api_key: "abc123"
  username: "exporter"
  password: "token"
  timeout: "5s"
  pipeline_concurrency: 2

exporter:
  listen_address: "0.0.0.0:9200"
  timer_mode: fixed
  omit_timestamps: true
  exit_on_metrics_failure: false

startup:
  retry_interval: 1m
  max_attempts: 3

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Jenkins.URL != "https://ci.example.com" {
		t.Errorf("expected URL %q, got %q", "https://ci.example.com", cfg.Jenkins.URL)
	}
	if cfg.Jenkins.Timeout != 5*time.Second {
		t.Errorf("expected timeout %v, got %v", 5*time.Second, cfg.Jenkins.Timeout)
	}
	if cfg.Jenkins.PipelineConcurrency != 2 {
		t.Errorf("expected pipeline concurrency 2, got %d", cfg.Jenkins.PipelineConcurrency)
	}
	if cfg.Exporter.ListenAddress != "0.0.0.0:9200" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:9200", cfg.Exporter.ListenAddress)
	}
	if cfg.Exporter.TimerMode != "fixed" || cfg.Exporter.HistogramMode != DefaultHistogramMode {
		t.Errorf("unexpected modes %q/%q", cfg.Exporter.TimerMode, cfg.Exporter.HistogramMode)
	}
	if !cfg.Exporter.OmitTimestamps {
		t.Error("expected omit_timestamps true")
	}
	if cfg.Exporter.ExitOnFailure() {
		t.Error("expected exit_on_metrics_failure false")
	}
	if cfg.Startup.RetryInterval != time.Minute || cfg.Startup.MaxAttempts != 3 {
		t.Errorf("unexpected startup config %+v", cfg.Startup)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			content: "jenkins: [unclosed",
			wantErr: "failed to parse",
		},
		{
			name:    "unknown field",
			content: "jenkins:\n  url: http://x\n  api_key: k\n  apikey: typo\n",
			wantErr: "failed to parse",
		},
		{
			name:    "missing required fields",
			content: "exporter:\n  listen_address: \":9118\"\n",
			wantErr: "jenkins.url",
		},
		{
			name:    "empty file",
			content: "",
			wantErr: "jenkins.api_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
jenkins:
  url: "http://from-file:8080"
  api_key: "file-key"
`)

	t.Setenv("JENKINS_EXPORTER_JENKINS_URL", "http://from-env:8080")
	t.Setenv("JENKINS_EXPORTER_JENKINS_PIPELINE_CONCURRENCY", "9")
	t.Setenv("JENKINS_EXPORTER_EXPORTER_EXIT_ON_METRICS_FAILURE", "false")
	t.Setenv("JENKINS_EXPORTER_STARTUP_RETRY_INTERVAL", "5s")
	t.Setenv("JENKINS_EXPORTER_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Jenkins.URL != "http://from-env:8080" {
		t.Errorf("expected env URL, got %q", cfg.Jenkins.URL)
	}
	if cfg.Jenkins.APIKey != "file-key" {
		t.Errorf("expected file API key, got %q", cfg.Jenkins.APIKey)
	}
	if cfg.Jenkins.PipelineConcurrency != 9 {
		t.Errorf("expected pipeline concurrency 9, got %d", cfg.Jenkins.PipelineConcurrency)
	}
	if cfg.Exporter.ExitOnFailure() {
		t.Error("expected exit_on_metrics_failure false from env")
	}
	if cfg.Startup.RetryInterval != 5*time.Second {
		t.Errorf("expected retry interval 5s, got %v", cfg.Startup.RetryInterval)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected logging level warn, got %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("JENKINS_EXPORTER_JENKINS_URL", "http://jenkins:8080")
	t.Setenv("JENKINS_EXPORTER_JENKINS_API_KEY", "env-key")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides(\"\") error = %v", err)
	}
	if cfg.Exporter.ListenAddress != DefaultListenAddress {
		t.Errorf("expected default listen address, got %q", cfg.Exporter.ListenAddress)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidEnv(t *testing.T) {
	t.Setenv("JENKINS_EXPORTER_JENKINS_URL", "http://jenkins:8080")
	t.Setenv("JENKINS_EXPORTER_JENKINS_API_KEY", "env-key")
	t.Setenv("JENKINS_EXPORTER_JENKINS_TIMEOUT", "ten seconds")

	_, err := LoadConfigWithEnvOverrides("")

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Errors[0].Field != "JENKINS_EXPORTER_JENKINS_TIMEOUT" {
		t.Errorf("expected error on the variable, got %q", verr.Errors[0].Field)
	}
}

func TestLoadUnvalidated(t *testing.T) {
	cfg, err := LoadUnvalidated("")
	if err != nil {
		t.Fatalf("LoadUnvalidated() error = %v", err)
	}
	if cfg.Jenkins.URL != "" {
		t.Errorf("expected empty URL, got %q", cfg.Jenkins.URL)
	}
	if cfg.Exporter.MetricsPath != DefaultMetricsPath {
		t.Errorf("defaults not applied: metrics path %q", cfg.Exporter.MetricsPath)
	}
}
