package translate

import (
	"strings"
)

// Section identifies one section of the metrics plugin document.
type Section string

const (
	SectionGauges     Section = "gauges"
	SectionMeters     Section = "meters"
	SectionTimers     Section = "timers"
	SectionHistograms Section = "histograms"
)

// Well-known metric names produced by the default rules.
const (
	HTTPResponseCodesMetric = "http_response_codes_count"
	NodeBuildsMetric        = "jenkins_node_builds"

	httpResponseCodesPrefix = "http.responseCodes"
	nodePrefix              = "jenkins.node."
	nodeBuildsSuffix        = ".builds"
)

// Rule maps metric keys following a naming convention onto one fixed metric
// name with a label derived from the key.
type Rule struct {
	// Name identifies the rule in logs and tests
	Name string

	// Sections lists where the rule applies
	Sections []Section

	// Match reports whether a key follows the convention
	Match func(key string) bool

	// Metric is the fixed metric name used for matching keys
	Metric string

	// Help is the help text shared by every key folded into Metric
	Help string

	// LabelName is the label carrying the part of the key that varies
	LabelName string

	// LabelValue extracts the label value from a matching key
	LabelValue func(key string) string
}

func (r Rule) appliesTo(section Section) bool {
	for _, s := range r.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// Rules is an ordered rule table. The first matching rule wins.
type Rules []Rule

// Lookup returns the first rule that applies to section and matches key.
func (rs Rules) Lookup(section Section, key string) (Rule, bool) {
	for _, r := range rs {
		if r.appliesTo(section) && r.Match(key) {
			return r, true
		}
	}
	return Rule{}, false
}

// DefaultRules recognizes the HTTP response-code meters and the per-node
// build timers emitted by the Jenkins metrics plugin.
var DefaultRules = Rules{
	{
		Name:     "http_response_codes",
		Sections: []Section{SectionMeters},
		Match: func(key string) bool {
			return strings.HasPrefix(key, httpResponseCodesPrefix)
		},
		Metric:    HTTPResponseCodesMetric,
		Help:      "Jenkins HTTP responses by response code",
		LabelName: "response_code",
		LabelValue: func(key string) string {
			rest := strings.TrimPrefix(key, httpResponseCodesPrefix)
			return strings.ToLower(strings.TrimPrefix(rest, "."))
		},
	},
	{
		Name:     "node_builds",
		Sections: []Section{SectionTimers, SectionHistograms},
		Match: func(key string) bool {
			return len(key) > len(nodePrefix)+len(nodeBuildsSuffix) &&
				strings.HasPrefix(key, nodePrefix) &&
				strings.HasSuffix(key, nodeBuildsSuffix)
		},
		Metric:    NodeBuildsMetric,
		Help:      "Jenkins build durations per node",
		LabelName: "node",
		LabelValue: func(key string) string {
			return strings.TrimSuffix(strings.TrimPrefix(key, nodePrefix), nodeBuildsSuffix)
		},
	},
}
