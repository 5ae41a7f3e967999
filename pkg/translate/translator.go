package translate

import (
	"fmt"
	"sort"

	"mercator-hq/jenkins-exporter/pkg/jenkins"
)

// Options controls translation.
type Options struct {
	// TimerMode selects the expansion for the timers section
	TimerMode Mode

	// HistogramMode selects the expansion for the histograms section
	HistogramMode Mode

	// OmitTimestamps leaves the job timestamp families without samples
	OmitTimestamps bool

	// Rules is the label extraction table. Nil means DefaultRules.
	Rules Rules
}

// DefaultOptions returns generic expansion with timestamps and the default
// rule table.
func DefaultOptions() Options {
	return Options{
		TimerMode:     ModeGeneric,
		HistogramMode: ModeGeneric,
		Rules:         DefaultRules,
	}
}

// Translator turns Jenkins API documents into metric families. It holds no
// state between calls and is safe for concurrent use.
type Translator struct {
	opts Options
}

// New returns a Translator using opts.
func New(opts Options) *Translator {
	if opts.Rules == nil {
		opts.Rules = DefaultRules
	}
	return &Translator{opts: opts}
}

// Options returns the options the translator was built with.
func (t *Translator) Options() Options {
	return t.opts
}

// Document translates every section of a metrics plugin document in the
// order gauges, timers, meters, histograms.
func (t *Translator) Document(doc *jenkins.MetricsDocument) []Family {
	if doc == nil {
		return nil
	}
	var out []Family
	out = append(out, t.Section(SectionGauges, doc.Gauges)...)
	out = append(out, t.Section(SectionTimers, doc.Timers)...)
	out = append(out, t.Section(SectionMeters, doc.Meters)...)
	out = append(out, t.Section(SectionHistograms, doc.Histograms)...)
	return out
}

// Section translates the entries of one document section. Keys are visited
// in sorted order so repeated calls produce identical output.
func (t *Translator) Section(section Section, entries map[string]jenkins.Entry) []Family {
	switch section {
	case SectionGauges:
		return t.gauges(entries)
	case SectionMeters:
		return t.meters(entries)
	case SectionTimers:
		return t.summaries(section, entries, t.opts.TimerMode)
	case SectionHistograms:
		return t.summaries(section, entries, t.opts.HistogramMode)
	default:
		return nil
	}
}

// gauges emits one gauge per entry holding a numeric or boolean value.
// Strings, arrays and null values are skipped.
func (t *Translator) gauges(entries map[string]jenkins.Entry) []Family {
	var out []Family
	for _, key := range sortedKeys(entries) {
		v, ok := number(entries[key]["value"])
		if !ok {
			continue
		}
		f := Family{
			Name: Sanitize(key),
			Help: "Jenkins gauge " + key,
			Kind: KindGauge,
		}
		f.Add(v)
		out = append(out, f)
	}
	return out
}

// meters emits one counter per entry from its count field. Keys matched by a
// rule share a single labeled family placed where the first match sorts.
func (t *Translator) meters(entries map[string]jenkins.Entry) []Family {
	var out []Family
	ruled := make(map[string]int)

	for _, key := range sortedKeys(entries) {
		v, ok := coerce(entries[key]["count"])
		if !ok {
			continue
		}

		r, matched := t.opts.Rules.Lookup(SectionMeters, key)
		if !matched {
			f := Family{
				Name: Sanitize(key),
				Help: "Jenkins meter " + key,
				Kind: KindCounter,
			}
			f.Add(v)
			out = append(out, f)
			continue
		}

		idx, ok := ruled[r.Metric]
		if !ok {
			out = append(out, Family{
				Name:       r.Metric,
				Help:       r.Help,
				Kind:       KindCounter,
				LabelNames: []string{r.LabelName},
			})
			idx = len(out) - 1
			ruled[r.Metric] = idx
		}
		out[idx].Add(v, r.LabelValue(key))
	}
	return out
}

func (t *Translator) summaries(section Section, entries map[string]jenkins.Entry, mode Mode) []Family {
	var out []Family
	for _, key := range sortedKeys(entries) {
		out = append(out, Expand(section, key, entries[key], mode, t.opts.Rules)...)
	}
	return out
}

// JobLabel is the label carrying the Jenkins job name.
const JobLabel = "job"

// PipelineRef identifies a pipeline build whose stages should be fetched.
type PipelineRef struct {
	Job   string
	Build int64
}

// Jobs emits the number, duration and timestamp families for every status
// kind, in that order per kind. All families are returned even when no job has
// a build of that kind. The second result lists the pipeline jobs whose last
// build should be described.
func (t *Translator) Jobs(jobs []jenkins.Job) ([]Family, []PipelineRef) {
	type triple struct{ number, duration, timestamp *Family }

	out := make([]Family, 0, 3*len(jenkins.StatusKinds))
	for _, kind := range jenkins.StatusKinds {
		base := "jenkins_job_" + snakeCase(string(kind))
		out = append(out,
			Family{
				Name:       base,
				Help:       fmt.Sprintf("Jenkins build number for %s", kind),
				Kind:       KindGauge,
				LabelNames: []string{JobLabel},
			},
			Family{
				Name:       base + "_duration_seconds",
				Help:       fmt.Sprintf("Jenkins build duration in seconds for %s", kind),
				Kind:       KindGauge,
				LabelNames: []string{JobLabel},
			},
			Family{
				Name:       base + "_timestamp_seconds",
				Help:       fmt.Sprintf("Jenkins build timestamp in unixtime for %s", kind),
				Kind:       KindGauge,
				LabelNames: []string{JobLabel},
			},
		)
	}

	byKind := make([]triple, len(jenkins.StatusKinds))
	for i := range jenkins.StatusKinds {
		byKind[i] = triple{&out[3*i], &out[3*i+1], &out[3*i+2]}
	}

	var refs []PipelineRef
	for _, job := range jobs {
		if job.Name == "" {
			continue
		}
		for i, kind := range jenkins.StatusKinds {
			b := job.Status(kind)
			fam := byKind[i]
			fam.number.Add(float64(b.Number), job.Name)
			fam.duration.Add(float64(b.Duration)/1000, job.Name)
			if !t.opts.OmitTimestamps {
				fam.timestamp.Add(float64(b.Timestamp)/1000, job.Name)
			}
		}
		if last := job.Status(jenkins.LastBuild); job.IsPipeline() && last.Number != 0 {
			refs = append(refs, PipelineRef{Job: job.Name, Build: last.Number})
		}
	}
	return out, refs
}

// PipelineFamilyName returns the stage duration family name for a job.
func PipelineFamilyName(job string) string {
	return "jenkins_job_" + Sanitize(job) + "_stages_duration"
}

// Pipeline emits one family with a sample per stage of run, labeled by job,
// stage and status. Repeated stage names keep their first occurrence.
func Pipeline(ref PipelineRef, run *jenkins.PipelineRun) Family {
	f := Family{
		Name:       PipelineFamilyName(ref.Job),
		Help:       fmt.Sprintf("Jenkins duration in seconds for each stage of the job %s", ref.Job),
		Kind:       KindGauge,
		LabelNames: []string{JobLabel, "stage", "status"},
	}
	if run == nil {
		return f
	}

	seen := make(map[string]struct{}, len(run.Stages))
	for _, st := range run.Stages {
		if _, dup := seen[st.Name]; dup {
			continue
		}
		seen[st.Name] = struct{}{}
		f.Add(float64(st.DurationMillis)/1000, ref.Job, st.Name, st.Status)
	}
	return f
}

func sortedKeys(entries map[string]jenkins.Entry) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
