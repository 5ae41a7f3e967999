package jenkins

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// WorkflowJobClass is the _class reported by Jenkins for pipeline jobs.
const WorkflowJobClass = "org.jenkinsci.plugins.workflow.job.WorkflowJob"

// StatusKind identifies one of the build references Jenkins keeps per job.
type StatusKind string

const (
	LastBuild             StatusKind = "lastBuild"
	LastCompletedBuild    StatusKind = "lastCompletedBuild"
	LastFailedBuild       StatusKind = "lastFailedBuild"
	LastStableBuild       StatusKind = "lastStableBuild"
	LastSuccessfulBuild   StatusKind = "lastSuccessfulBuild"
	LastUnstableBuild     StatusKind = "lastUnstableBuild"
	LastUnsuccessfulBuild StatusKind = "lastUnsuccessfulBuild"
)

// StatusKinds lists every tracked status kind in export order.
var StatusKinds = []StatusKind{
	LastBuild,
	LastCompletedBuild,
	LastFailedBuild,
	LastStableBuild,
	LastSuccessfulBuild,
	LastUnstableBuild,
	LastUnsuccessfulBuild,
}

// Build is the subset of a build record requested from the job listing.
type Build struct {
	Number    int64 `json:"number"`
	Duration  int64 `json:"duration"`  // milliseconds
	Timestamp int64 `json:"timestamp"` // milliseconds since epoch
}

// Job is one entry of the /api/json job listing.
type Job struct {
	Name  string `json:"name"`
	Class string `json:"_class"`

	LastBuild             *Build `json:"lastBuild"`
	LastCompletedBuild    *Build `json:"lastCompletedBuild"`
	LastFailedBuild       *Build `json:"lastFailedBuild"`
	LastStableBuild       *Build `json:"lastStableBuild"`
	LastSuccessfulBuild   *Build `json:"lastSuccessfulBuild"`
	LastUnstableBuild     *Build `json:"lastUnstableBuild"`
	LastUnsuccessfulBuild *Build `json:"lastUnsuccessfulBuild"`
}

// Status returns the build recorded for kind. Jenkins reports null for kinds
// that never happened; those come back as the zero Build.
func (j Job) Status(kind StatusKind) Build {
	var b *Build
	switch kind {
	case LastBuild:
		b = j.LastBuild
	case LastCompletedBuild:
		b = j.LastCompletedBuild
	case LastFailedBuild:
		b = j.LastFailedBuild
	case LastStableBuild:
		b = j.LastStableBuild
	case LastSuccessfulBuild:
		b = j.LastSuccessfulBuild
	case LastUnstableBuild:
		b = j.LastUnstableBuild
	case LastUnsuccessfulBuild:
		b = j.LastUnsuccessfulBuild
	}
	if b == nil {
		return Build{}
	}
	return *b
}

// IsPipeline reports whether the job is a workflow (pipeline) job.
func (j Job) IsPipeline() bool {
	return j.Class == WorkflowJobClass
}

// JobList is the top-level /api/json response.
type JobList struct {
	Jobs []Job `json:"jobs"`

	// Skipped lists jobs that did not decode
	Skipped []Malformed `json:"-"`
}

// UnmarshalJSON decodes jobs one at a time so a malformed job is skipped
// instead of failing the listing.
func (l *JobList) UnmarshalJSON(data []byte) error {
	var raw struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = JobList{Jobs: make([]Job, 0, len(raw.Jobs))}
	for i, body := range raw.Jobs {
		var job Job
		if err := json.Unmarshal(body, &job); err != nil {
			l.Skipped = append(l.Skipped, Malformed{Section: "jobs", Key: entryName(body, i), Err: err})
			continue
		}
		l.Jobs = append(l.Jobs, job)
	}
	return nil
}

// Entry is one metric of the metrics plugin output. Values are left loosely
// typed because the plugin mixes numbers, strings and arrays.
type Entry map[string]any

// MetricsDocument is the metrics plugin /metrics/{key}/metrics response.
// Counters are not exported and are not decoded.
type MetricsDocument struct {
	Gauges     map[string]Entry `json:"gauges"`
	Meters     map[string]Entry `json:"meters"`
	Timers     map[string]Entry `json:"timers"`
	Histograms map[string]Entry `json:"histograms"`

	// Skipped lists entries and sections that were not JSON objects
	Skipped []Malformed `json:"-"`
}

// UnmarshalJSON decodes each section entry by entry. Entries that are not
// objects are recorded in Skipped; only a body that is not a JSON object
// fails.
func (d *MetricsDocument) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = MetricsDocument{}
	d.Gauges = d.section(raw, "gauges")
	d.Meters = d.section(raw, "meters")
	d.Timers = d.section(raw, "timers")
	d.Histograms = d.section(raw, "histograms")
	return nil
}

func (d *MetricsDocument) section(raw map[string]json.RawMessage, name string) map[string]Entry {
	body, ok := raw[name]
	if !ok || isNull(body) {
		return nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		d.Skipped = append(d.Skipped, Malformed{Section: name, Err: err})
		return nil
	}

	out := make(map[string]Entry, len(entries))
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		var e Entry
		err := json.Unmarshal(entries[key], &e)
		if err == nil && e == nil {
			err = errNotObject
		}
		if err != nil {
			d.Skipped = append(d.Skipped, Malformed{Section: name, Key: key, Err: err})
			continue
		}
		out[key] = e
	}
	return out
}

// Stage is one stage of a pipeline run as reported by wfapi/describe.
type Stage struct {
	Name           string `json:"name"`
	Status         string `json:"status"`
	DurationMillis int64  `json:"durationMillis"`
}

// PipelineRun is the wfapi/describe response for one build.
type PipelineRun struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Status string  `json:"status"`
	Stages []Stage `json:"stages"`

	// Skipped lists stages that did not decode
	Skipped []Malformed `json:"-"`
}

// UnmarshalJSON decodes stages one at a time so a malformed stage is skipped
// instead of failing the run.
func (r *PipelineRun) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     string            `json:"id"`
		Name   string            `json:"name"`
		Status string            `json:"status"`
		Stages []json.RawMessage `json:"stages"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = PipelineRun{ID: raw.ID, Name: raw.Name, Status: raw.Status, Stages: make([]Stage, 0, len(raw.Stages))}
	for i, body := range raw.Stages {
		var st Stage
		if err := json.Unmarshal(body, &st); err != nil {
			r.Skipped = append(r.Skipped, Malformed{Section: "stages", Key: entryName(body, i), Err: err})
			continue
		}
		r.Stages = append(r.Stages, st)
	}
	return nil
}

var errNotObject = errors.New("not a JSON object")

func isNull(body json.RawMessage) bool {
	return string(body) == "null"
}

// entryName returns the name field of a malformed entry when it can still be
// read, or its position.
func entryName(body json.RawMessage, index int) string {
	var named struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(body, &named) == nil && named.Name != "" {
		return named.Name
	}
	return fmt.Sprintf("#%d", index)
}
