package translate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/common/model"

	"mercator-hq/jenkins-exporter/pkg/jenkins"
)

// Kind is the Prometheus type of a metric family.
type Kind int

const (
	KindGauge Kind = iota
	KindCounter
)

// String returns the exposition-format type name.
func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Family is one named metric with its samples. Every sample carries one label
// value per entry of LabelNames, in the same order.
type Family struct {
	Name       string   `json:"name"`
	Help       string   `json:"help"`
	Kind       Kind     `json:"kind"`
	LabelNames []string `json:"label_names,omitempty"`
	Samples    []Sample `json:"samples"`
}

// Sample is one labeled value of a Family.
type Sample struct {
	LabelValues []string `json:"label_values,omitempty"`
	Value       float64  `json:"value"`
}

// Add appends a sample. It panics if the number of label values does not match
// the family's label names, which is a programming error in a translator.
func (f *Family) Add(value float64, labelValues ...string) {
	if len(labelValues) != len(f.LabelNames) {
		panic(fmt.Sprintf("family %s: got %d label values for %d label names", f.Name, len(labelValues), len(f.LabelNames)))
	}
	f.Samples = append(f.Samples, Sample{LabelValues: labelValues, Value: value})
}

// sameShape reports whether two families can be merged.
func (f *Family) sameShape(o *Family) bool {
	return f.Kind == o.Kind && f.Help == o.Help && slices.Equal(f.LabelNames, o.LabelNames)
}

// Drop reasons reported by Collection.
const (
	DropInvalidName    = "invalid_name"
	DropInvalidLabel   = "invalid_label"
	DropConflict       = "conflict"
	DropDuplicateLabel = "duplicate_labels"
	DropMalformed      = "malformed"
)

// Drop records a family or sample that was rejected by a Collection.
type Drop struct {
	Name   string
	Reason string
	Detail string
}

// Collection is an ordered set of families keyed by name. Families with the
// same name are merged when their kind, help and label names agree; anything
// else is rejected so the output never carries two definitions of a name.
type Collection struct {
	families []*Family
	index    map[string]int
	seen     map[string]map[string]struct{}
	drops    []Drop
}

// NewCollection returns an empty Collection.
func NewCollection() *Collection {
	return &Collection{
		index: make(map[string]int),
		seen:  make(map[string]map[string]struct{}),
	}
}

// Add merges families into the collection in order.
func (c *Collection) Add(families ...Family) {
	for i := range families {
		c.add(&families[i])
	}
}

func (c *Collection) add(f *Family) {
	if !model.IsValidLegacyMetricName(f.Name) {
		c.drop(f.Name, DropInvalidName, "")
		return
	}
	for _, ln := range f.LabelNames {
		if !model.LabelName(ln).IsValidLegacy() || strings.HasPrefix(ln, "__") {
			c.drop(f.Name, DropInvalidLabel, ln)
			return
		}
	}

	pos, ok := c.index[f.Name]
	if !ok {
		pos = len(c.families)
		c.index[f.Name] = pos
		c.families = append(c.families, &Family{
			Name:       f.Name,
			Help:       f.Help,
			Kind:       f.Kind,
			LabelNames: slices.Clone(f.LabelNames),
		})
		c.seen[f.Name] = make(map[string]struct{})
	}

	existing := c.families[pos]
	if !existing.sameShape(f) {
		c.drop(f.Name, DropConflict, fmt.Sprintf("%s%v conflicts with %s%v", f.Kind, f.LabelNames, existing.Kind, existing.LabelNames))
		return
	}

	seen := c.seen[f.Name]
	for _, s := range f.Samples {
		key := strings.Join(s.LabelValues, "\xff")
		if _, dup := seen[key]; dup {
			c.drop(f.Name, DropDuplicateLabel, strings.Join(s.LabelValues, ","))
			continue
		}
		seen[key] = struct{}{}
		existing.Samples = append(existing.Samples, Sample{
			LabelValues: slices.Clone(s.LabelValues),
			Value:       s.Value,
		})
	}
}

// Skip records entries the Jenkins client left out of a response as
// malformed drops.
func (c *Collection) Skip(entries ...jenkins.Malformed) {
	for _, m := range entries {
		name := m.Key
		if name == "" {
			name = m.Section
		}
		c.drop(name, DropMalformed, m.Error())
	}
}

func (c *Collection) drop(name, reason, detail string) {
	c.drops = append(c.drops, Drop{Name: name, Reason: reason, Detail: detail})
}

// Families returns the merged families in insertion order.
func (c *Collection) Families() []Family {
	out := make([]Family, len(c.families))
	for i, f := range c.families {
		out[i] = *f
	}
	return out
}

// Drops returns everything rejected so far.
func (c *Collection) Drops() []Drop {
	return c.drops
}

// Len returns the number of families.
func (c *Collection) Len() int {
	return len(c.families)
}
