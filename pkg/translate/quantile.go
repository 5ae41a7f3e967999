package translate

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"mercator-hq/jenkins-exporter/pkg/jenkins"
)

// Mode selects how distribution summaries (timers and histograms) are
// expanded.
type Mode int

const (
	// ModeGeneric emits one sample per numeric field of the summary.
	ModeGeneric Mode = iota
	// ModeFixed emits exactly the count and the six fixed quantiles.
	ModeFixed
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if m == ModeFixed {
		return "fixed"
	}
	return "generic"
}

// ParseMode parses "generic" or "fixed". The empty string is generic.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "generic":
		return ModeGeneric, nil
	case "fixed":
		return ModeFixed, nil
	default:
		return ModeGeneric, fmt.Errorf("unknown summary mode %q (want generic or fixed)", s)
	}
}

// QuantileLabel is the label carrying the quantile rank.
const QuantileLabel = "quantile"

type quantile struct {
	field string
	label string
}

// quantiles lists the percentile fields of a metrics plugin summary.
var quantiles = []quantile{
	{"p50", "0.5"},
	{"p75", "0.75"},
	{"p95", "0.95"},
	{"p98", "0.98"},
	{"p99", "0.99"},
	{"p999", "0.999"},
}

var quantileLabels = func() map[string]string {
	m := make(map[string]string, len(quantiles))
	for _, q := range quantiles {
		m[q.field] = q.label
	}
	return m
}()

// ignoredFields never become samples in generic mode.
var ignoredFields = map[string]struct{}{
	"values":         {},
	"duration_units": {},
	"rate_units":     {},
	"stddev":         {},
}

// expansion carries the naming decided for one summary entry.
type expansion struct {
	base        string
	help        string
	labelNames  []string
	labelValues []string
}

// Expand converts one distribution summary into metric families. Keys
// matching a rule for section are folded into the rule's metric with the
// rule's label added to every sample.
func Expand(section Section, key string, entry jenkins.Entry, mode Mode, rules Rules) []Family {
	e := expansion{
		base: Sanitize(key),
		help: fmt.Sprintf("Jenkins %s %s", strings.TrimSuffix(string(section), "s"), key),
	}
	if r, ok := rules.Lookup(section, key); ok {
		e.base = r.Metric
		e.help = r.Help
		e.labelNames = []string{r.LabelName}
		e.labelValues = []string{r.LabelValue(key)}
	}

	if mode == ModeFixed {
		return e.fixed(entry)
	}
	return e.generic(entry)
}

// fixed emits {base}_count and the six quantiles. Absent values read as 0.
func (e expansion) fixed(entry jenkins.Entry) []Family {
	count := Family{
		Name:       e.base + "_count",
		Help:       e.help + " (count)",
		Kind:       KindCounter,
		LabelNames: slices.Clone(e.labelNames),
	}
	v, _ := coerce(entry["count"])
	count.Add(v, slices.Clone(e.labelValues)...)

	q := e.quantileFamily()
	for _, qt := range quantiles {
		v, _ := coerce(entry[qt.field])
		q.Add(v, append(slices.Clone(e.labelValues), qt.label)...)
	}

	return []Family{count, q}
}

// generic walks the summary fields in sorted order. Percentiles share one
// family labeled by quantile; count is a counter; any other numeric field is a
// gauge of its own. Missing or non-numeric fields emit nothing.
func (e expansion) generic(entry jenkins.Entry) []Family {
	fields := make([]string, 0, len(entry))
	for field := range entry {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var out []Family
	qIdx := -1
	for _, field := range fields {
		if _, skip := ignoredFields[field]; skip {
			continue
		}
		v, ok := coerce(entry[field])
		if !ok {
			continue
		}

		if label, isQuantile := quantileLabels[field]; isQuantile {
			if qIdx < 0 {
				out = append(out, e.quantileFamily())
				qIdx = len(out) - 1
			}
			out[qIdx].Add(v, append(slices.Clone(e.labelValues), label)...)
			continue
		}

		kind := KindGauge
		if field == "count" {
			kind = KindCounter
		}
		f := Family{
			Name:       e.base + "_" + Sanitize(field),
			Help:       e.help + " (" + field + ")",
			Kind:       kind,
			LabelNames: slices.Clone(e.labelNames),
		}
		f.Add(v, slices.Clone(e.labelValues)...)
		out = append(out, f)
	}
	return out
}

func (e expansion) quantileFamily() Family {
	return Family{
		Name:       e.base,
		Help:       e.help,
		Kind:       KindGauge,
		LabelNames: append(slices.Clone(e.labelNames), QuantileLabel),
	}
}
