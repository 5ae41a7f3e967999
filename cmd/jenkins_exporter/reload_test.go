package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/jenkins-exporter/internal/jenkinstest"
	"mercator-hq/jenkins-exporter/pkg/config"
	"mercator-hq/jenkins-exporter/pkg/exporter"
	"mercator-hq/jenkins-exporter/pkg/jenkins"
	"mercator-hq/jenkins-exporter/pkg/telemetry/health"
	"mercator-hq/jenkins-exporter/pkg/telemetry/logging"
	"mercator-hq/jenkins-exporter/pkg/telemetry/metrics"
)

func reloadTestConfig(url string) *config.Config {
	cfg := &config.Config{}
	cfg.Jenkins.URL = url
	cfg.Jenkins.APIKey = jenkinstest.APIKey
	config.ApplyDefaults(cfg)
	return cfg
}

func TestReloader_SwapsJenkins(t *testing.T) {
	oldJenkins := jenkinstest.NewMockServer()
	defer oldJenkins.Close()
	oldJenkins.Serve()

	newJenkins := jenkinstest.NewMockServer()
	defer newJenkins.Close()
	newJenkins.Serve()

	registry := prometheus.NewRegistry()
	selfMetrics := metrics.NewCollector(&config.MetricsConfig{}, registry)

	cfg := reloadTestConfig(oldJenkins.URL())
	client, err := jenkins.NewClient(cfg.Jenkins.ClientConfig())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	expCfg, err := exporterConfig(cfg)
	if err != nil {
		t.Fatalf("exporterConfig() error = %v", err)
	}
	exp := exporter.New(client, expCfg, exporter.WithLogger(logging.Nop()))
	checker := health.New(time.Second)
	checker.RegisterCheck("jenkins", client.Ping)

	rl := &reloader{
		current:  cfg,
		exporter: exp,
		checker:  checker,
		observer: selfMetrics,
		recorder: selfMetrics,
		logger:   logging.Nop(),
	}

	rl.Apply(reloadTestConfig(newJenkins.URL()), nil)

	if _, err := exp.Scrape(context.Background()); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if got := newJenkins.RequestCount(jenkinstest.MetricsPath); got != 1 {
		t.Errorf("new jenkins metrics requests = %d, want 1", got)
	}
	if got := oldJenkins.RequestCount(jenkinstest.MetricsPath); got != 0 {
		t.Errorf("old jenkins metrics requests = %d, want 0", got)
	}

	if status := checker.CheckReadiness(context.Background()); !status.Ready() {
		t.Errorf("readiness = %+v, want ready", status)
	}
	if got := newJenkins.RequestCount(jenkinstest.PingPath); got != 1 {
		t.Errorf("readiness should ping the new jenkins, got %d pings", got)
	}

	rl.Apply(nil, errors.New("yaml: line 3: did not find expected key"))

	bad := reloadTestConfig(newJenkins.URL())
	bad.Exporter.TimerMode = "exact"
	rl.Apply(bad, nil)

	expected := `
# HELP jenkins_exporter_config_reloads_total Total number of configuration reloads by result
# TYPE jenkins_exporter_config_reloads_total counter
jenkins_exporter_config_reloads_total{result="failure"} 2
jenkins_exporter_config_reloads_total{result="success"} 1
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "jenkins_exporter_config_reloads_total"); err != nil {
		t.Errorf("unexpected reload metrics:\n%v", err)
	}
	if rl.current.Jenkins.URL != newJenkins.URL() {
		t.Errorf("current config not kept after a rejected reload")
	}
}
