// Package exporter runs scrape cycles against Jenkins and serves the result
// as a Prometheus collector.
//
// A scrape fetches the job listing, then the metrics plugin document, then
// the stage breakdown of every pipeline job's last build with bounded
// concurrency. The translated families are merged into one
// translate.Collection in a fixed order: job families, gauges, timers,
// meters, histograms, pipeline stages.
//
// Failures are classified:
//
//   - A failed job listing or describe call is a TransientFetchError. The
//     scrape succeeds without that data.
//   - A failed metrics fetch is a FatalFetchError. The scrape fails, Collect
//     sends an invalid metric, and the error is offered on Fatal() so the
//     process can stop when configured to.
//   - A malformed entry inside an otherwise valid response (a job, a metric
//     entry, a stage) is skipped and reported in Result.Drops with reason
//     translate.DropMalformed. Only a body that is not JSON fails the fetch.
//
// Collect emits const metrics, so a family without samples (every job family
// when Jenkins lists no jobs, the timestamp families with OmitTimestamps) has
// no HELP or TYPE line in the exposition. Scrape still returns it.
//
// Basic usage:
//
//	client, _ := jenkins.NewClient(cfg.Jenkins.ClientConfig())
//	exp := exporter.New(client, exporter.Config{
//	    Translate:           translate.DefaultOptions(),
//	    PipelineConcurrency: 4,
//	    ScrapeTimeout:       30 * time.Second,
//	})
//	registry.MustRegister(exp)
package exporter
