package exporter

import (
	"fmt"

	"mercator-hq/jenkins-exporter/pkg/jenkins"
)

// TransientFetchError is a failed fetch whose data is left out of the current
// scrape while the rest of the scrape still succeeds.
type TransientFetchError struct {
	// Source is the endpoint that failed
	Source jenkins.Source

	// Job is the pipeline job for describe failures
	Job string

	// Err is the underlying jenkins error
	Err error
}

// Error implements the error interface.
func (e *TransientFetchError) Error() string {
	if e.Job != "" {
		return fmt.Sprintf("skipping %s for job %q: %v", e.Source, e.Job, e.Err)
	}
	return fmt.Sprintf("skipping %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

// FatalFetchError is a failed fetch of the metrics endpoint. The whole scrape
// is reported as failed.
type FatalFetchError struct {
	// Source is the endpoint that failed
	Source jenkins.Source

	// Err is the underlying jenkins error
	Err error
}

// Error implements the error interface.
func (e *FatalFetchError) Error() string {
	return fmt.Sprintf("scrape failed: %s unavailable: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error for error chain support.
func (e *FatalFetchError) Unwrap() error {
	return e.Err
}
