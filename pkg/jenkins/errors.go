package jenkins

import (
	"fmt"
)

// Source names the Jenkins endpoint a fetch was made against.
type Source string

const (
	SourceJobs     Source = "jobs"
	SourceMetrics  Source = "metrics"
	SourcePipeline Source = "pipeline"
	SourcePing     Source = "ping"
)

// FetchError represents a failed request to Jenkins: a transport failure or a
// non-2xx response.
type FetchError struct {
	// Source is the endpoint that failed
	Source Source

	// URL is the request URL with the API key masked
	URL string

	// StatusCode is the HTTP status code (0 if the request never completed)
	StatusCode int

	// Message is the (truncated) response body for HTTP errors
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("jenkins %s fetch %s failed (status %d): %s", e.Source, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("jenkins %s fetch %s failed: %v", e.Source, e.URL, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ParseError represents a response body that could not be decoded.
type ParseError struct {
	// Source is the endpoint that returned the malformed response
	Source Source

	// Cause is the underlying decode error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("jenkins %s response parse error: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Malformed is an entry left out of a decoded response because it did not
// have the expected shape. The rest of the response is still used.
type Malformed struct {
	// Section is the part of the response the entry belongs to (jobs,
	// gauges, stages, ...)
	Section string

	// Key is the metric key, job name or stage name; "#<index>" when the
	// entry has no readable name, empty when the whole section was skipped
	Key string

	// Err is the decode error
	Err error
}

// Error implements the error interface.
func (m Malformed) Error() string {
	if m.Key == "" {
		return fmt.Sprintf("malformed %s section: %v", m.Section, m.Err)
	}
	return fmt.Sprintf("malformed %s entry %q: %v", m.Section, m.Key, m.Err)
}
