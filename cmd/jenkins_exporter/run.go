package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mercator-hq/jenkins-exporter/pkg/cli"
	"mercator-hq/jenkins-exporter/pkg/config"
	"mercator-hq/jenkins-exporter/pkg/exporter"
	"mercator-hq/jenkins-exporter/pkg/jenkins"
	"mercator-hq/jenkins-exporter/pkg/server"
	"mercator-hq/jenkins-exporter/pkg/telemetry/health"
	"mercator-hq/jenkins-exporter/pkg/telemetry/metrics"
	"mercator-hq/jenkins-exporter/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	port          int
	watchConfig   bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Serve Jenkins metrics",
	Long: `Serve Jenkins metrics over HTTP.

Before serving, the exporter pings the Jenkins metrics plugin and retries at a
fixed interval until it answers. Every request to the metrics path then runs a
scrape against Jenkins. When the metrics endpoint fails and
exporter.exit_on_metrics_failure is set, the process exits.

Examples:
  # Minimal invocation
  jenkins_exporter run --jenkins-url http://jenkins:8080 --api-key $KEY

  # Historical port flag
  jenkins_exporter run --config exporter.yml --port 9118

  # Reload the configuration file on change (SIGHUP also reloads)
  jenkins_exporter run --config exporter.yml --watch-config

  # Validate configuration without contacting Jenkins
  jenkins_exporter run --config exporter.yml --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().IntVarP(&runFlags.port, "port", "p", 0, "listen on this port on all interfaces (ignored with --listen)")
	runCmd.Flags().BoolVar(&runFlags.watchConfig, "watch-config", false, "reload the config file when it changes")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	expCfg, err := exporterConfig(cfg)
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	info := health.CurrentVersion()
	logger.Info("starting jenkins_exporter",
		"version", info.Version,
		"revision", info.Revision,
		"branch", info.Branch,
		"go_version", info.GoVersion,
		"jenkins_url", cfg.Jenkins.URL,
	)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := cli.SetupSignalHandler(parent)
	defer stop()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, info.Version)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.Tracing.Timeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	metrics.RegisterRuntime(registry, programName)
	selfMetrics := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)

	client, err := jenkins.NewClient(cfg.Jenkins.ClientConfig(),
		jenkins.WithLogger(logger),
		jenkins.WithObserver(selfMetrics),
	)
	if err != nil {
		return cli.WrapConfigError(err)
	}

	if err := waitForJenkins(ctx, client, cfg.Startup, logger); err != nil {
		return cli.NewJenkinsError("run", err)
	}

	exp := exporter.New(client, expCfg,
		exporter.WithLogger(logger),
		exporter.WithRecorder(selfMetrics),
		exporter.WithTracer(tracer.Tracer()),
	)
	registry.MustRegister(exp)

	checker := health.New(cfg.Jenkins.Timeout)
	checker.RegisterCheck("jenkins", client.Ping)

	srv := server.New(cfg, registry, checker, server.WithLogger(logger), server.WithVersion(info))

	rl := &reloader{
		current:  cfg,
		exporter: exp,
		checker:  checker,
		observer: selfMetrics,
		recorder: selfMetrics,
		logger:   logger,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(gctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		return nil
	})

	g.Go(func() error {
		return watchFatal(gctx, exp, cfg.Exporter.ExitOnFailure())
	})

	if cfgFile != "" {
		reload := cli.ReloadSignal(gctx)
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-reload:
					logger.Info("received SIGHUP, reloading configuration", "path", cfgFile)
					rl.Apply(loadConfigFrom(cfgFile))
				}
			}
		})
	}

	if runFlags.watchConfig {
		if cfgFile == "" {
			logger.Warn("--watch-config ignored: no config file")
		} else {
			watcher, err := config.NewWatcher(cfgFile, 0, logger)
			if err != nil {
				return cli.NewCommandError("run", err)
			}
			watcher.Load = loadConfigFrom
			g.Go(func() error {
				return watcher.Watch(gctx, rl.Apply)
			})
		}
	}

	err = g.Wait()
	logger.Info("jenkins_exporter stopped")
	return err
}

// fatalSource delivers metrics endpoint failures. *exporter.Exporter
// implements it.
type fatalSource interface {
	Fatal() <-chan error
}

// watchFatal waits for metrics endpoint failures. When exitOnFailure is set
// the first one stops the process.
func watchFatal(ctx context.Context, exp fatalSource, exitOnFailure bool) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-exp.Fatal():
			if exitOnFailure {
				return cli.NewJenkinsError("run", err)
			}
		}
	}
}
