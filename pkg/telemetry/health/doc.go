// Package health provides liveness, readiness and version endpoints for the
// Jenkins exporter.
//
// # Endpoints
//
//   - /-/healthy: liveness, 200 while the process serves HTTP
//   - /-/ready: readiness, 200 when every registered check passes, else 503
//   - /version: build information from github.com/prometheus/common/version
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("jenkins", client.Ping)
//
//	router.Get(health.LivenessPath, checker.LivenessHandler())
//	router.Get(health.ReadinessPath, checker.ReadinessHandler())
//	router.Get(health.VersionPath, health.VersionHandler(health.CurrentVersion()))
//
// Checks run concurrently, each bounded by the checker's timeout. A check
// that does not return in time is reported unhealthy with a timeout message.
package health
