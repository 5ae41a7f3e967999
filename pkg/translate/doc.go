// Package translate converts Jenkins API documents into Prometheus metric
// families.
//
// # Sources
//
// Three documents are translated:
//
//   - The metrics plugin document (/metrics/{key}/metrics) with its gauges,
//     meters, timers and histograms sections
//   - The job listing (/api/json) with seven build references per job
//   - The pipeline stage description (/job/{name}/{n}/wfapi/describe)
//
// # Naming
//
// Metric keys are mapped with Sanitize. Keys following a known convention,
// such as http.responseCodes.ok or jenkins.node.agent-1.builds, are folded
// into a single family by a Rule so the varying part becomes a label instead
// of a new metric name.
//
// # Summaries
//
// Timers and histograms carry a count and six percentiles. Expand emits them
// either in fixed mode (count plus the quantile family) or in generic mode
// (every numeric field, percentiles grouped under one family).
//
// # Collections
//
// Translators return plain []Family values. A Collection merges families of
// the same name and rejects invalid names, conflicting definitions and
// duplicate label sets, recording each rejection as a Drop:
//
//	c := translate.NewCollection()
//	c.Add(t.Document(doc)...)
//	families, _ := t.Jobs(jobs)
//	c.Add(families...)
//	for _, d := range c.Drops() {
//	    logger.Warn("dropped family", "name", d.Name, "reason", d.Reason)
//	}
package translate
