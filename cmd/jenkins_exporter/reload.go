package main

import (
	"log/slog"
	"sync"

	"mercator-hq/jenkins-exporter/pkg/config"
	"mercator-hq/jenkins-exporter/pkg/exporter"
	"mercator-hq/jenkins-exporter/pkg/jenkins"
	"mercator-hq/jenkins-exporter/pkg/telemetry/health"
)

// reloadRecorder counts reload outcomes. *metrics.Collector implements it.
type reloadRecorder interface {
	RecordReload(err error)
}

// reloader swaps the Jenkins client and scrape settings when the
// configuration changes. Serving and telemetry settings need a restart.
type reloader struct {
	mu      sync.Mutex
	current *config.Config

	exporter *exporter.Exporter
	checker  *health.Checker
	observer jenkins.Observer
	recorder reloadRecorder
	logger   *slog.Logger
}

// Apply receives a reload attempt. On error the running configuration stays.
func (r *reloader) Apply(cfg *config.Config, err error) {
	if err == nil {
		err = r.swap(cfg)
	}
	r.recorder.RecordReload(err)
	if err != nil {
		r.logger.Error("configuration reload rejected", "error", err)
	}
}

func (r *reloader) swap(cfg *config.Config) error {
	expCfg, err := exporterConfig(cfg)
	if err != nil {
		return err
	}

	client, err := jenkins.NewClient(cfg.Jenkins.ClientConfig(),
		jenkins.WithLogger(r.logger),
		jenkins.WithObserver(r.observer),
	)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.warnRestartRequired(cfg)
	r.exporter.Update(client, expCfg)
	r.checker.RegisterCheck("jenkins", client.Ping)
	r.current = cfg

	r.logger.Info("configuration applied",
		"jenkins_url", cfg.Jenkins.URL,
		"timer_mode", cfg.Exporter.TimerMode,
		"histogram_mode", cfg.Exporter.HistogramMode,
		"pipeline_concurrency", expCfg.PipelineConcurrency,
	)
	return nil
}

// warnRestartRequired logs settings that changed but only take effect on
// restart.
func (r *reloader) warnRestartRequired(cfg *config.Config) {
	old := r.current
	changed := func(field string, differs bool) {
		if differs {
			r.logger.Warn("setting changed but requires a restart", "field", field)
		}
	}
	changed("exporter.listen_address", old.Exporter.ListenAddress != cfg.Exporter.ListenAddress)
	changed("exporter.metrics_path", old.Exporter.MetricsPath != cfg.Exporter.MetricsPath)
	changed("exporter.exit_on_metrics_failure", old.Exporter.ExitOnFailure() != cfg.Exporter.ExitOnFailure())
	changed("telemetry.logging", old.Telemetry.Logging != cfg.Telemetry.Logging)
	changed("telemetry.tracing", old.Telemetry.Tracing != cfg.Telemetry.Tracing)
}
