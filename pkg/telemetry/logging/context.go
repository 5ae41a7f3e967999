package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// ScrapeIDKey is the context key for the identifier of one scrape cycle.
	ScrapeIDKey contextKey = "scrape_id"

	// JobKey is the context key for the Jenkins job being fetched.
	JobKey contextKey = "job"
)

// WithScrapeID adds a scrape ID to the context.
func WithScrapeID(ctx context.Context, scrapeID string) context.Context {
	return context.WithValue(ctx, ScrapeIDKey, scrapeID)
}

// GetScrapeID retrieves the scrape ID from the context.
func GetScrapeID(ctx context.Context) string {
	if id, ok := ctx.Value(ScrapeIDKey).(string); ok {
		return id
	}
	return ""
}

// WithJob adds a Jenkins job name to the context.
func WithJob(ctx context.Context, job string) context.Context {
	return context.WithValue(ctx, JobKey, job)
}

// GetJob retrieves the Jenkins job name from the context.
func GetJob(ctx context.Context) string {
	if job, ok := ctx.Value(JobKey).(string); ok {
		return job
	}
	return ""
}

// contextAttrs extracts the known fields from ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr

	if id := GetScrapeID(ctx); id != "" {
		attrs = append(attrs, slog.String(string(ScrapeIDKey), id))
	}
	if job := GetJob(ctx); job != "" {
		attrs = append(attrs, slog.String(string(JobKey), job))
	}

	return attrs
}
