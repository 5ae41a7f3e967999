package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys set on exporter spans.
const (
	AttrScrapeID   = "jenkins_exporter.scrape_id"
	AttrJob        = "jenkins.job"
	AttrBuild      = "jenkins.build"
	AttrFamilies   = "jenkins_exporter.families"
	AttrDrops      = "jenkins_exporter.drops"
	AttrTransient  = "jenkins_exporter.transient_errors"
	AttrPipelines  = "jenkins_exporter.pipelines"
	AttrConcurrent = "jenkins_exporter.pipeline_concurrency"
)

// ScrapeAttributes returns the attributes identifying a scrape span.
func ScrapeAttributes(scrapeID string, concurrency int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrScrapeID, scrapeID),
		attribute.Int(AttrConcurrent, concurrency),
	}
}

// SetScrapeResult records the outcome counts of a finished scrape.
func SetScrapeResult(span trace.Span, families, drops, transient int) {
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.Int(AttrFamilies, families),
		attribute.Int(AttrDrops, drops),
		attribute.Int(AttrTransient, transient),
	)
}

// PipelineAttributes returns the attributes identifying one describe call.
func PipelineAttributes(job string, build int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrJob, job),
		attribute.Int64(AttrBuild, build),
	}
}
