// Package logging builds the exporter's structured logger on log/slog.
//
// # Overview
//
// New returns a *slog.Logger that:
//   - writes JSON, text or console output at a configurable level
//   - masks configured secrets (the Jenkins API key and password), URL
//     user-info and values of sensitive keys such as "password"
//   - adds scrape_id and job attributes taken from the record's context
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:   "info",
//	    Format:  "json",
//	    Secrets: []string{cfg.Jenkins.APIKey, cfg.Jenkins.Password},
//	})
//
//	ctx = logging.WithScrapeID(ctx, uuid.NewString())
//	logger.InfoContext(ctx, "scrape finished", "families", 42)
//	// {"level":"INFO","msg":"scrape finished","families":42,"scrape_id":"..."}
//
// Records logged without a context, or with Info instead of InfoContext,
// carry no scrape attributes.
package logging
