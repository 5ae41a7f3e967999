package exporter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/jenkins-exporter/internal/jenkinstest"
	"mercator-hq/jenkins-exporter/pkg/jenkins"
	"mercator-hq/jenkins-exporter/pkg/telemetry/logging"
	"mercator-hq/jenkins-exporter/pkg/translate"
)

func newTestExporter(t *testing.T, ms *jenkinstest.MockServer, opts ...Option) *Exporter {
	t.Helper()
	client, err := jenkins.NewClient(jenkins.Config{
		URL:     ms.URL(),
		APIKey:  jenkinstest.APIKey,
		Timeout: 5 * time.Second,
	}, jenkins.WithLogger(logging.Nop()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	opts = append([]Option{WithLogger(logging.Nop())}, opts...)
	return New(client, Config{
		Translate:           translate.DefaultOptions(),
		PipelineConcurrency: 2,
		ScrapeTimeout:       10 * time.Second,
	}, opts...)
}

func familyNames(families []translate.Family) []string {
	names := make([]string, len(families))
	for i, f := range families {
		names[i] = f.Name
	}
	return names
}

func findFamily(families []translate.Family, name string) (translate.Family, bool) {
	for _, f := range families {
		if f.Name == name {
			return f, true
		}
	}
	return translate.Family{}, false
}

func TestExporter_Scrape(t *testing.T) {
	ms := jenkinstest.NewMockServer()
	defer ms.Close()
	ms.Serve()

	res, err := newTestExporter(t, ms).Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if res.ScrapeID == "" {
		t.Error("expected a scrape ID")
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected transient errors: %v", res.Errors)
	}
	if len(res.Drops) != 0 {
		t.Errorf("unexpected drops: %v", res.Drops)
	}

	names := familyNames(res.Families)
	if len(names) < 22 {
		t.Fatalf("expected job, document and pipeline families, got %v", names)
	}
	if names[0] != "jenkins_job_last_build" {
		t.Errorf("first family = %q, want jenkins_job_last_build", names[0])
	}
	if names[21] != "jenkins_executor_count_value" {
		t.Errorf("first document family = %q, want jenkins_executor_count_value", names[21])
	}
	if last := names[len(names)-1]; last != "jenkins_job_deploy_stages_duration" {
		t.Errorf("last family = %q, want jenkins_job_deploy_stages_duration", last)
	}

	codes, ok := findFamily(res.Families, translate.HTTPResponseCodesMetric)
	if !ok {
		t.Fatal("missing response code family")
	}
	want := []translate.Sample{
		{LabelValues: []string{"notfound"}, Value: 12},
		{LabelValues: []string{"ok"}, Value: 1204},
	}
	if diff := cmp.Diff(want, codes.Samples); diff != "" {
		t.Errorf("response code samples mismatch (-want +got):\n%s", diff)
	}

	if _, ok := findFamily(res.Families, "jenkins_versions_core"); ok {
		t.Error("string gauge should not be exported")
	}

	if n := ms.RequestCount(jenkinstest.DescribePath("deploy", "42")); n != 1 {
		t.Errorf("describe requests = %d, want 1", n)
	}
	if n := ms.RequestCount(jenkinstest.DescribePath("never-built", "0")); n != 0 {
		t.Errorf("never-built job was described %d times", n)
	}
}

func TestExporter_Collect(t *testing.T) {
	ms := jenkinstest.NewMockServer()
	defer ms.Close()
	ms.Serve()

	exp := newTestExporter(t, ms)

	expected := `
# HELP jenkins_job_deploy_stages_duration Jenkins duration in seconds for each stage of the job deploy
# TYPE jenkins_job_deploy_stages_duration gauge
jenkins_job_deploy_stages_duration{job="deploy",stage="Build",status="SUCCESS"} 30
jenkins_job_deploy_stages_duration{job="deploy",stage="Deploy",status="SUCCESS"} 14.5
jenkins_job_deploy_stages_duration{job="deploy",stage="Test",status="SUCCESS"} 45.5
# HELP jenkins_job_last_failed_build Jenkins build number for lastFailedBuild
# TYPE jenkins_job_last_failed_build gauge
jenkins_job_last_failed_build{job="deploy"} 0
jenkins_job_last_failed_build{job="lint"} 6
jenkins_job_last_failed_build{job="never-built"} 0
`
	if err := testutil.CollectAndCompare(exp, strings.NewReader(expected),
		"jenkins_job_deploy_stages_duration", "jenkins_job_last_failed_build"); err != nil {
		t.Errorf("unexpected collect output:\n%v", err)
	}

	if n := testutil.CollectAndCount(exp, "jenkins_node_builds"); n != 6 {
		t.Errorf("jenkins_node_builds samples = %d, want 6", n)
	}
}

func TestExporter_MetricsFailureIsFatal(t *testing.T) {
	ms := jenkinstest.NewMockServer()
	defer ms.Close()
	ms.SetJSON(jenkinstest.JobsPath, jenkinstest.JobsJSON)
	ms.SetResponse(jenkinstest.MetricsPath, jenkinstest.MockResponse{StatusCode: http.StatusForbidden, Body: "bad key"})

	exp := newTestExporter(t, ms)

	_, err := exp.Scrape(context.Background())
	var ferr *FatalFetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FatalFetchError, got %v", err)
	}
	if ferr.Source != jenkins.SourceMetrics {
		t.Errorf("fatal source = %q, want metrics", ferr.Source)
	}
	var fetchErr *jenkins.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected wrapped 403 FetchError, got %v", err)
	}

	select {
	case got := <-exp.Fatal():
		if !errors.As(got, &ferr) {
			t.Errorf("Fatal() delivered %v", got)
		}
	default:
		t.Error("expected fatal error to be offered")
	}

	if n := ms.RequestCount(jenkinstest.DescribePath("deploy", "42")); n != 0 {
		t.Errorf("describe called %d times after fatal error", n)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(exp)
	if _, err := reg.Gather(); err == nil {
		t.Error("expected Gather to fail on a fatal scrape")
	}
}

func TestExporter_MalformedEntriesAreDropped(t *testing.T) {
	const goodJobs = `{"_class": "hudson.model.FreeStyleProject", "name": "lint", "lastBuild": {"number": 7, "duration": 1500, "timestamp": 1700000100000}}`

	tests := []struct {
		name      string
		jobs      string
		metrics   string
		describe  string
		wantDrop  string
		wantKept  string
		wantValue float64
	}{
		{
			name:      "gauge entry is not an object",
			metrics:   `{"gauges": {"good.one": {"value": 1}, "bad.one": 5}}`,
			wantDrop:  "bad.one",
			wantKept:  "good_one",
			wantValue: 1,
		},
		{
			name:      "timer entry is not an object",
			metrics:   `{"gauges": {"good.one": {"value": 2}}, "timers": {"bad.timer": [1, 2]}}`,
			wantDrop:  "bad.timer",
			wantKept:  "good_one",
			wantValue: 2,
		},
		{
			name:      "whole section is not an object",
			metrics:   `{"gauges": {"good.one": {"value": 3}}, "meters": "n/a"}`,
			wantDrop:  "meters",
			wantKept:  "good_one",
			wantValue: 3,
		},
		{
			name:      "build number is a string",
			jobs:      `{"jobs": [` + goodJobs + `, {"_class": "hudson.model.FreeStyleProject", "name": "bad", "lastBuild": {"number": "7", "duration": 1, "timestamp": 1}}]}`,
			wantDrop:  "bad",
			wantKept:  "jenkins_job_last_build",
			wantValue: 7,
		},
		{
			name: "stage duration is a string",
			jobs: `{"jobs": [{"_class": "org.jenkinsci.plugins.workflow.job.WorkflowJob", "name": "deploy", "lastBuild": {"number": 42, "duration": 1, "timestamp": 1}}]}`,
			describe: `{"id": "42", "status": "SUCCESS", "stages": [
				{"name": "Build", "status": "SUCCESS", "durationMillis": 30000},
				{"name": "Test", "status": "SUCCESS", "durationMillis": "45500"}
			]}`,
			wantDrop:  "deploy/Test",
			wantKept:  "jenkins_job_deploy_stages_duration",
			wantValue: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.jobs == "" {
				tt.jobs = `{"jobs": [` + goodJobs + `]}`
			}
			if tt.metrics == "" {
				tt.metrics = `{"gauges": {}}`
			}

			ms := jenkinstest.NewMockServer()
			defer ms.Close()
			ms.SetJSON(jenkinstest.JobsPath, tt.jobs)
			ms.SetJSON(jenkinstest.MetricsPath, tt.metrics)
			if tt.describe != "" {
				ms.SetJSON(jenkinstest.DescribePath("deploy", "42"), tt.describe)
			}

			rec := &recordingRecorder{}
			exp := newTestExporter(t, ms, WithRecorder(rec))
			res, err := exp.Scrape(context.Background())
			if err != nil {
				t.Fatalf("Scrape() error = %v", err)
			}
			if len(res.Errors) != 0 {
				t.Errorf("unexpected transient errors: %v", res.Errors)
			}

			select {
			case got := <-exp.Fatal():
				t.Errorf("malformed entry reached Fatal(): %v", got)
			default:
			}

			if len(res.Drops) != 1 {
				t.Fatalf("expected one drop, got %v", res.Drops)
			}
			if d := res.Drops[0]; d.Name != tt.wantDrop || d.Reason != translate.DropMalformed {
				t.Errorf("drop = %+v, want %s/%s", d, tt.wantDrop, translate.DropMalformed)
			}
			if rec.drops != 1 {
				t.Errorf("recorder saw %d drops, want 1", rec.drops)
			}

			kept, ok := findFamily(res.Families, tt.wantKept)
			if !ok || len(kept.Samples) != 1 {
				t.Fatalf("expected %s with one sample, got %+v", tt.wantKept, kept)
			}
			if kept.Samples[0].Value != tt.wantValue {
				t.Errorf("%s = %v, want %v", tt.wantKept, kept.Samples[0].Value, tt.wantValue)
			}
		})
	}
}

func TestExporter_JobsFailureIsTransient(t *testing.T) {
	ms := jenkinstest.NewMockServer()
	defer ms.Close()
	ms.Serve()
	ms.SetResponse(jenkinstest.JobsPath, jenkinstest.MockResponse{StatusCode: http.StatusInternalServerError})

	res, err := newTestExporter(t, ms).Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 transient error, got %v", res.Errors)
	}
	var terr *TransientFetchError
	if !errors.As(res.Errors[0], &terr) || terr.Source != jenkins.SourceJobs {
		t.Errorf("expected jobs TransientFetchError, got %v", res.Errors[0])
	}

	if _, ok := findFamily(res.Families, "jenkins_job_last_build"); ok {
		t.Error("job families should be absent when the listing fails")
	}
	if res.Families[0].Name != "jenkins_executor_count_value" {
		t.Errorf("first family = %q, want the first gauge", res.Families[0].Name)
	}
}

func TestExporter_DescribeFailureIsTransient(t *testing.T) {
	ms := jenkinstest.NewMockServer()
	defer ms.Close()
	ms.SetJSON(jenkinstest.JobsPath, jenkinstest.JobsJSON)
	ms.SetJSON(jenkinstest.MetricsPath, jenkinstest.MetricsJSON)

	res, err := newTestExporter(t, ms).Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 transient error, got %v", res.Errors)
	}
	var terr *TransientFetchError
	if !errors.As(res.Errors[0], &terr) || terr.Job != "deploy" || terr.Source != jenkins.SourcePipeline {
		t.Errorf("expected deploy describe error, got %v", res.Errors[0])
	}
	if _, ok := findFamily(res.Families, "jenkins_job_deploy_stages_duration"); ok {
		t.Error("pipeline family should be absent when describe fails")
	}
	if _, ok := findFamily(res.Families, "jenkins_job_last_build"); !ok {
		t.Error("job families should still be exported")
	}
}

func TestExporter_CollectTimeout(t *testing.T) {
	ms := jenkinstest.NewMockServer()
	defer ms.Close()
	ms.Serve()
	ms.SetResponse(jenkinstest.MetricsPath, jenkinstest.MockResponse{Body: jenkinstest.MetricsJSON, Delay: 300 * time.Millisecond})

	exp := newTestExporter(t, ms)
	exp.Update(exp.source, Config{Translate: translate.DefaultOptions(), ScrapeTimeout: 50 * time.Millisecond})

	reg := prometheus.NewRegistry()
	reg.MustRegister(exp)
	if _, err := reg.Gather(); err == nil {
		t.Error("expected Gather to fail when the scrape times out")
	}
}

// fakeSource serves pipeline jobs from memory and tracks describe concurrency.
type fakeSource struct {
	jobs     []jenkins.Job
	doc      *jenkins.MetricsDocument
	delay    time.Duration
	fail     map[string]bool
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func newFakeSource(n int) *fakeSource {
	src := &fakeSource{doc: &jenkins.MetricsDocument{}, fail: map[string]bool{}}
	for i := 0; i < n; i++ {
		src.jobs = append(src.jobs, jenkins.Job{
			Name:      fmt.Sprintf("pipeline-%02d", i),
			Class:     jenkins.WorkflowJobClass,
			LastBuild: &jenkins.Build{Number: int64(i + 1)},
		})
	}
	return src
}

func (s *fakeSource) Jobs(context.Context) (*jenkins.JobList, error) {
	return &jenkins.JobList{Jobs: s.jobs}, nil
}

func (s *fakeSource) Metrics(context.Context) (*jenkins.MetricsDocument, error) {
	return s.doc, nil
}

func (s *fakeSource) Describe(ctx context.Context, job string, build int64) (*jenkins.PipelineRun, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if s.fail[job] {
		return nil, &jenkins.FetchError{Source: jenkins.SourcePipeline, StatusCode: http.StatusNotFound}
	}
	return &jenkins.PipelineRun{Stages: []jenkins.Stage{
		{Name: "Build", Status: "SUCCESS", DurationMillis: build * 1000},
	}}, nil
}

func TestExporter_PipelineConcurrency(t *testing.T) {
	src := newFakeSource(10)
	src.delay = 20 * time.Millisecond
	src.fail["pipeline-03"] = true

	exp := New(src, Config{Translate: translate.DefaultOptions(), PipelineConcurrency: 3}, WithLogger(logging.Nop()))

	res, err := exp.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if got := src.maxSeen.Load(); got > 3 {
		t.Errorf("max concurrent describes = %d, want <= 3", got)
	}
	if len(res.Errors) != 1 {
		t.Errorf("expected 1 transient error, got %d", len(res.Errors))
	}

	var pipelines []string
	for _, f := range res.Families {
		if strings.HasSuffix(f.Name, "_stages_duration") {
			pipelines = append(pipelines, f.Name)
		}
	}
	var want []string
	for i := 0; i < 10; i++ {
		if i == 3 {
			continue
		}
		want = append(want, fmt.Sprintf("jenkins_job_pipeline_%02d_stages_duration", i))
	}
	if diff := cmp.Diff(want, pipelines); diff != "" {
		t.Errorf("pipeline family order mismatch (-want +got):\n%s", diff)
	}
}

func TestExporter_Update(t *testing.T) {
	first := newFakeSource(1)
	second := newFakeSource(2)

	exp := New(first, Config{Translate: translate.DefaultOptions()}, WithLogger(logging.Nop()))
	if exp.cfg.PipelineConcurrency != DefaultPipelineConcurrency {
		t.Errorf("PipelineConcurrency = %d, want default %d", exp.cfg.PipelineConcurrency, DefaultPipelineConcurrency)
	}

	exp.Update(second, Config{Translate: translate.Options{OmitTimestamps: true}, PipelineConcurrency: 1})

	res, err := exp.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	number, _ := findFamily(res.Families, "jenkins_job_last_build")
	if len(number.Samples) != 2 {
		t.Errorf("expected samples from the new source, got %d", len(number.Samples))
	}
	ts, _ := findFamily(res.Families, "jenkins_job_last_build_timestamp_seconds")
	if len(ts.Samples) != 0 {
		t.Errorf("expected timestamps omitted after update, got %d samples", len(ts.Samples))
	}
}

type recordingRecorder struct {
	mu      sync.Mutex
	scrapes []error
	drops   int
}

func (r *recordingRecorder) ObserveScrape(_ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrapes = append(r.scrapes, err)
}

func (r *recordingRecorder) ObserveDrops(drops []translate.Drop) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drops += len(drops)
}

func TestExporter_Recorder(t *testing.T) {
	src := newFakeSource(0)
	src.doc = &jenkins.MetricsDocument{
		Gauges: map[string]jenkins.Entry{
			// both sanitize to jenkins_queue_size
			"jenkins.queue.size":  {"value": 1},
			"jenkins.queue-size":  {"value": 2},
			"jenkins.executors.x": {"value": 3},
		},
	}
	rec := &recordingRecorder{}

	exp := New(src, Config{Translate: translate.DefaultOptions()}, WithLogger(logging.Nop()), WithRecorder(rec))
	res, err := exp.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if len(rec.scrapes) != 1 || rec.scrapes[0] != nil {
		t.Errorf("expected one successful scrape observation, got %v", rec.scrapes)
	}
	if rec.drops != 1 || len(res.Drops) != 1 {
		t.Errorf("expected one drop, recorder saw %d, result has %v", rec.drops, res.Drops)
	}
	if res.Drops[0].Reason != translate.DropConflict {
		t.Errorf("drop reason = %q, want %q", res.Drops[0].Reason, translate.DropConflict)
	}
}

func TestExporter_OfferFatalKeepsLatest(t *testing.T) {
	exp := New(newFakeSource(0), Config{}, WithLogger(logging.Nop()))

	first := errors.New("first")
	second := errors.New("second")
	exp.offerFatal(first)
	exp.offerFatal(second)

	select {
	case got := <-exp.Fatal():
		if got != second {
			t.Errorf("Fatal() = %v, want %v", got, second)
		}
	default:
		t.Fatal("expected a pending fatal error")
	}

	select {
	case got := <-exp.Fatal():
		t.Errorf("unexpected second delivery %v", got)
	default:
	}
}

func TestExporter_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	exp := New(newFakeSource(2), Config{Translate: translate.DefaultOptions()},
		WithLogger(logging.Nop()), WithTracer(provider.Tracer("test")))

	if _, err := exp.Scrape(context.Background()); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	counts := map[string]int{}
	var scrapeID string
	for _, s := range recorder.Ended() {
		counts[s.Name()]++
		if s.Name() == "scrape" {
			for _, kv := range s.Attributes() {
				if kv.Key == "jenkins_exporter.scrape_id" {
					scrapeID = kv.Value.AsString()
				}
			}
		}
	}
	if counts["scrape"] != 1 || counts["describe"] != 2 {
		t.Errorf("unexpected spans: %v", counts)
	}
	if scrapeID == "" {
		t.Error("scrape span is missing the scrape ID")
	}
}

func TestExporter_EmptyFamiliesAreNotExposed(t *testing.T) {
	exp := New(newFakeSource(0), Config{Translate: translate.Options{OmitTimestamps: true}}, WithLogger(logging.Nop()))

	res, err := exp.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if _, ok := findFamily(res.Families, "jenkins_job_last_build_timestamp_seconds"); !ok {
		t.Error("Scrape should return the family even without samples")
	}

	if n := testutil.CollectAndCount(exp); n != 0 {
		t.Errorf("collected %d metrics, want none without jobs", n)
	}
}
