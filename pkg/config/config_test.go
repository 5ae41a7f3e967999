package config

import (
	"testing"
	"time"
)

// MinimalConfig returns the smallest valid configuration with defaults applied.
func MinimalConfig() *Config {
	cfg := &Config{
		Jenkins: JenkinsConfig{
			URL:    "http://jenkins:8080",
			APIKey: "test-key",
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestExporterConfig_ExitOnFailure(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name  string
		value *bool
		want  bool
	}{
		{"unset uses default", nil, DefaultExitOnMetricsFailure},
		{"explicit true", &yes, true},
		{"explicit false", &no, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ExporterConfig{ExitOnMetricsFailure: tt.value}
			if got := cfg.ExitOnFailure(); got != tt.want {
				t.Errorf("ExitOnFailure() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJenkinsConfig_ClientConfig(t *testing.T) {
	cfg := JenkinsConfig{
		URL:                 "https://ci.example.com",
		APIKey:              "key",
		Username:            "bot",
		Password:            "token",
		Timeout:             5 * time.Second,
		InsecureSkipVerify:  true,
		PipelineConcurrency: 8,
	}

	got := cfg.ClientConfig()

	if got.URL != cfg.URL || got.APIKey != cfg.APIKey || got.Username != cfg.Username || got.Password != cfg.Password {
		t.Errorf("ClientConfig() = %+v, credentials not carried over", got)
	}
	if got.Timeout != 5*time.Second || !got.InsecureSkipVerify {
		t.Errorf("ClientConfig() = %+v, transport settings not carried over", got)
	}
}
