// Package server serves the Jenkins exporter over HTTP.
//
// Routes are registered on a github.com/prometheus/common/route router:
//
//   - the configured metrics path (default /metrics): the registry, which
//     holds the exporter collector and the self-metrics
//   - /-/healthy, /-/ready, /version: see package health
//   - /: a landing page linking the above
//
// Every route records jenkins_exporter_http_request_duration_seconds with
// handler and code labels.
//
// Basic usage:
//
//	srv := server.New(cfg, registry, checker, server.WithLogger(logger))
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled, then shuts down within
// exporter.shutdown_timeout.
package server
