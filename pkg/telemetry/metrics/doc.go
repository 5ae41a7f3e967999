// Package metrics provides the exporter's own Prometheus metrics.
//
// # Overview
//
// Jenkins metrics are produced by the exporter package at scrape time. This
// package covers everything else: how the exporter itself is doing.
//
// # Metrics
//
//	jenkins_exporter_scrapes_total{result}
//	jenkins_exporter_scrape_duration_seconds
//	jenkins_exporter_up
//	jenkins_exporter_fetch_duration_seconds{source}
//	jenkins_exporter_fetch_errors_total{source,type}
//	jenkins_exporter_dropped_families_total{reason}
//	jenkins_exporter_config_reloads_total{result}
//
// The namespace is configurable (telemetry.metrics.namespace).
//
// # Usage
//
//	registry := prometheus.NewRegistry()
//	metrics.RegisterRuntime(registry, "jenkins_exporter")
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)
//
//	client, _ := jenkins.NewClient(jcfg, jenkins.WithObserver(collector))
//	exp := exporter.New(client, opts, exporter.WithRecorder(collector))
//	registry.MustRegister(exp)
//
//	http.Handle("/metrics", metrics.Handler(registry, metrics.HandlerConfig{}))
package metrics
