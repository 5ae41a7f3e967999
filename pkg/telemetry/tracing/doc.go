// Package tracing provides OpenTelemetry tracing for the Jenkins exporter.
//
// # Overview
//
// Every scrape opens a "scrape" span. Requests to Jenkins open client spans
// named after the endpoint ("jenkins.jobs", "jenkins.metrics",
// "jenkins.pipeline", "jenkins.ping") and carry W3C Trace Context headers, so
// a traced Jenkins (for example behind an instrumented reverse proxy) joins
// the same trace.
//
// Spans are exported over OTLP gRPC.
//
// # Sampling Strategies
//
// Three sampling strategies are supported:
//   - always: Sample every scrape
//   - never: Sample no scrapes
//   - ratio: Sample a fraction of scrapes
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	exp := exporter.New(client, opts, exporter.WithTracer(tracer.Tracer()))
//
// When tracing is disabled, New returns a tracer backed by the noop provider
// and the global provider is left untouched.
package tracing
