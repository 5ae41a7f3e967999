package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// OutputFormat selects how collected families are printed.
type OutputFormat string

const (
	// FormatText is the Prometheus text exposition format (default).
	FormatText OutputFormat = "text"
	// FormatOpenMetrics is the OpenMetrics text format.
	FormatOpenMetrics OutputFormat = "openmetrics"
	// FormatJSON is a flattened JSON document.
	FormatJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatText, FormatOpenMetrics, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", NewConfigError("output", fmt.Sprintf("unknown output format %q (want text, openmetrics or json)", s))
	}
}

// Formatter writes gathered metric families.
type Formatter interface {
	FormatTo(w io.Writer, families []*dto.MetricFamily) error
}

// NewFormatter creates a formatter for format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatOpenMetrics:
		return &ExpositionFormatter{Format: expfmt.NewFormat(expfmt.TypeOpenMetrics)}
	default:
		return &ExpositionFormatter{Format: expfmt.NewFormat(expfmt.TypeTextPlain)}
	}
}

// ExpositionFormatter writes families in a Prometheus exposition format.
type ExpositionFormatter struct {
	Format expfmt.Format
}

// FormatTo encodes every family to w.
func (f *ExpositionFormatter) FormatTo(w io.Writer, families []*dto.MetricFamily) error {
	enc := expfmt.NewEncoder(w, f.Format)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	if closer, ok := enc.(expfmt.Closer); ok {
		return closer.Close()
	}
	return nil
}

// JSONFormatter writes families as a JSON array of JSONFamily.
type JSONFormatter struct {
	Indent bool
}

// JSONFamily is one family in JSON output.
type JSONFamily struct {
	Name    string       `json:"name"`
	Help    string       `json:"help"`
	Type    string       `json:"type"`
	Samples []JSONSample `json:"samples"`
}

// JSONSample is one sample in JSON output. Non-finite values are encoded as
// strings ("NaN", "+Inf", "-Inf").
type JSONSample struct {
	Labels      map[string]string `json:"labels,omitempty"`
	Value       any               `json:"value"`
	TimestampMs int64             `json:"timestamp_ms,omitempty"`
}

// FormatTo writes families to w.
func (f *JSONFormatter) FormatTo(w io.Writer, families []*dto.MetricFamily) error {
	out := make([]JSONFamily, 0, len(families))
	for _, mf := range families {
		out = append(out, toJSONFamily(mf))
	}

	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(out)
}

func toJSONFamily(mf *dto.MetricFamily) JSONFamily {
	fam := JSONFamily{
		Name:    mf.GetName(),
		Help:    mf.GetHelp(),
		Type:    jsonType(mf.GetType()),
		Samples: make([]JSONSample, 0, len(mf.GetMetric())),
	}
	for _, m := range mf.GetMetric() {
		var labels map[string]string
		if len(m.GetLabel()) > 0 {
			labels = make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
		}

		var v float64
		switch {
		case m.Counter != nil:
			v = m.GetCounter().GetValue()
		case m.Gauge != nil:
			v = m.GetGauge().GetValue()
		case m.Untyped != nil:
			v = m.GetUntyped().GetValue()
		default:
			// Summaries and histograms only come from self-metrics; print the count.
			v = float64(sampleCount(m))
		}

		fam.Samples = append(fam.Samples, JSONSample{
			Labels:      labels,
			Value:       jsonValue(v),
			TimestampMs: m.GetTimestampMs(),
		})
	}
	return fam
}

func sampleCount(m *dto.Metric) uint64 {
	if m.Histogram != nil {
		return m.GetHistogram().GetSampleCount()
	}
	return m.GetSummary().GetSampleCount()
}

func jsonType(t dto.MetricType) string {
	switch t {
	case dto.MetricType_COUNTER:
		return "counter"
	case dto.MetricType_GAUGE:
		return "gauge"
	case dto.MetricType_HISTOGRAM, dto.MetricType_GAUGE_HISTOGRAM:
		return "histogram"
	case dto.MetricType_SUMMARY:
		return "summary"
	default:
		return "untyped"
	}
}

func jsonValue(v float64) any {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	default:
		return v
	}
}
