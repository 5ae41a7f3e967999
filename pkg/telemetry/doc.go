// Package telemetry groups the exporter's own observability.
//
// # Components
//
//   - logging: slog construction, secret redaction, scrape and job context
//   - metrics: self-metrics for scrapes, Jenkins fetches, drops and reloads,
//     plus the promhttp handler serving the registry
//   - tracing: OpenTelemetry spans for scrapes and Jenkins requests
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, _ := logging.New(logging.Config{Level: "info", Format: "json"})
//
//	registry := prometheus.NewRegistry()
//	metrics.RegisterRuntime(registry, "jenkins_exporter")
//	self := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)
//
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing, version.Version)
//	defer tracer.Shutdown(context.Background())
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("jenkins", client.Ping)
package telemetry
