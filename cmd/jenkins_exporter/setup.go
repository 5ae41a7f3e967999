package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"mercator-hq/jenkins-exporter/pkg/cli"
	"mercator-hq/jenkins-exporter/pkg/config"
	"mercator-hq/jenkins-exporter/pkg/exporter"
	"mercator-hq/jenkins-exporter/pkg/telemetry/logging"
	"mercator-hq/jenkins-exporter/pkg/translate"
)

// loadConfig loads cfgFile with flag overrides and reports any problem as a
// cli.ConfigError.
func loadConfig() (*config.Config, error) {
	cfg, err := loadConfigFrom(cfgFile)
	if err != nil {
		return nil, cli.WrapConfigError(err)
	}
	return cfg, nil
}

// loadConfigFrom layers the file at path (if any), the environment, defaults
// and command-line flags, then validates the result. The config watcher uses
// it so flags keep their precedence across reloads.
func loadConfigFrom(path string) (*config.Config, error) {
	cfg, err := config.LoadUnvalidated(path)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyFlags copies non-empty flag values over cfg.
func applyFlags(cfg *config.Config) {
	if globalFlags.jenkinsURL != "" {
		cfg.Jenkins.URL = globalFlags.jenkinsURL
	}
	if globalFlags.apiKey != "" {
		cfg.Jenkins.APIKey = globalFlags.apiKey
	}
	if globalFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = globalFlags.logLevel
	}

	switch {
	case runFlags.listenAddress != "":
		cfg.Exporter.ListenAddress = runFlags.listenAddress
	case runFlags.port > 0:
		cfg.Exporter.ListenAddress = fmt.Sprintf(":%d", runFlags.port)
	}
}

// newLogger builds the process logger. The Jenkins API key and password are
// masked in every record.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Secrets:   []string{cfg.Jenkins.APIKey, cfg.Jenkins.Password},
		Writer:    w,
	})
	if err != nil {
		return nil, cli.WrapConfigError(err)
	}
	return logger, nil
}

// exporterConfig derives the scrape settings from cfg.
func exporterConfig(cfg *config.Config) (exporter.Config, error) {
	timerMode, err := translate.ParseMode(cfg.Exporter.TimerMode)
	if err != nil {
		return exporter.Config{}, cli.NewConfigError("exporter.timer_mode", err.Error())
	}
	histogramMode, err := translate.ParseMode(cfg.Exporter.HistogramMode)
	if err != nil {
		return exporter.Config{}, cli.NewConfigError("exporter.histogram_mode", err.Error())
	}

	return exporter.Config{
		Translate: translate.Options{
			TimerMode:      timerMode,
			HistogramMode:  histogramMode,
			OmitTimestamps: cfg.Exporter.OmitTimestamps,
			Rules:          translate.DefaultRules,
		},
		PipelineConcurrency: cfg.Jenkins.PipelineConcurrency,
		ScrapeTimeout:       cfg.Exporter.ScrapeTimeout,
	}, nil
}

// pinger is the connectivity check run before serving.
type pinger interface {
	Ping(ctx context.Context) error
}

// waitForJenkins pings Jenkins until it answers, waiting a fixed interval
// between attempts. MaxAttempts of zero retries until ctx is cancelled.
func waitForJenkins(ctx context.Context, p pinger, cfg config.StartupConfig, logger *slog.Logger) error {
	for attempt := 1; ; attempt++ {
		err := p.Ping(ctx)
		if err == nil {
			logger.Info("connected to jenkins", "attempts", attempt)
			return nil
		}
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			return fmt.Errorf("jenkins unreachable after %d attempts: %w", attempt, err)
		}

		logger.Warn("jenkins unreachable, retrying",
			"attempt", attempt,
			"retry_in", cfg.RetryInterval.String(),
			"error", err,
		)

		timer := time.NewTimer(cfg.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("startup cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}
