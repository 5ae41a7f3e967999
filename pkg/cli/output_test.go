package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherFixture(t *testing.T) []*dto.MetricFamily {
	t.Helper()

	registry := prometheus.NewRegistry()

	stages := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "jenkins_job_deploy_stages_duration",
		Help: "Jenkins build stages duration in ms",
	}, []string{"job", "stage", "status"})
	stages.WithLabelValues("deploy", "Build", "SUCCESS").Set(30000)

	scheduled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jenkins_job_scheduled_count",
		Help: "Jenkins metric jenkins.job.scheduled",
	})
	scheduled.Add(7)

	ratio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jenkins_executor_ratio_value",
		Help: "Jenkins metric jenkins.executor.ratio",
	})
	ratio.Set(math.NaN())

	registry.MustRegister(stages, scheduled, ratio)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	return families
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{input: "", want: FormatText},
		{input: "text", want: FormatText},
		{input: "openmetrics", want: FormatOpenMetrics},
		{input: "json", want: FormatJSON},
		{input: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.input)
			if tt.wantErr {
				var cfgErr *ConfigError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("expected ConfigError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOutputFormat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpositionFormatter_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatText).FormatTo(&buf, gatherFixture(t)); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# TYPE jenkins_job_scheduled_count counter",
		"jenkins_job_scheduled_count 7",
		`jenkins_job_deploy_stages_duration{job="deploy",stage="Build",status="SUCCESS"} 30000`,
		"jenkins_executor_ratio_value NaN",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExpositionFormatter_OpenMetrics(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatOpenMetrics).FormatTo(&buf, gatherFixture(t)); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if !strings.HasSuffix(buf.String(), "# EOF\n") {
		t.Errorf("expected OpenMetrics output to end with # EOF, got:\n%s", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).FormatTo(&buf, gatherFixture(t)); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var got []JSONFamily
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	// Gather sorts families by name.
	want := []JSONFamily{
		{
			Name: "jenkins_executor_ratio_value",
			Help: "Jenkins metric jenkins.executor.ratio",
			Type: "gauge",
			Samples: []JSONSample{
				{Value: "NaN"},
			},
		},
		{
			Name: "jenkins_job_deploy_stages_duration",
			Help: "Jenkins build stages duration in ms",
			Type: "gauge",
			Samples: []JSONSample{
				{Labels: map[string]string{"job": "deploy", "stage": "Build", "status": "SUCCESS"}, Value: 30000.0},
			},
		},
		{
			Name: "jenkins_job_scheduled_count",
			Help: "Jenkins metric jenkins.job.scheduled",
			Type: "counter",
			Samples: []JSONSample{
				{Value: 7.0},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON output mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONValue(t *testing.T) {
	tests := []struct {
		in   float64
		want any
	}{
		{in: 1.5, want: 1.5},
		{in: math.Inf(1), want: "+Inf"},
		{in: math.Inf(-1), want: "-Inf"},
		{in: math.NaN(), want: "NaN"},
	}

	for _, tt := range tests {
		if got := jsonValue(tt.in); got != tt.want {
			t.Errorf("jsonValue(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
