package exporter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"mercator-hq/jenkins-exporter/pkg/jenkins"
	"mercator-hq/jenkins-exporter/pkg/telemetry/logging"
	"mercator-hq/jenkins-exporter/pkg/telemetry/tracing"
	"mercator-hq/jenkins-exporter/pkg/translate"
)

// DefaultPipelineConcurrency is used when Config.PipelineConcurrency is unset.
const DefaultPipelineConcurrency = 4

// Source is the Jenkins API surface a scrape reads from. *jenkins.Client
// implements it.
type Source interface {
	Jobs(ctx context.Context) (*jenkins.JobList, error)
	Metrics(ctx context.Context) (*jenkins.MetricsDocument, error)
	Describe(ctx context.Context, job string, build int64) (*jenkins.PipelineRun, error)
}

// Recorder receives scrape outcomes for self-metrics. *metrics.Collector
// implements it.
type Recorder interface {
	ObserveScrape(duration time.Duration, err error)
	ObserveDrops(drops []translate.Drop)
}

// Config controls a scrape cycle.
type Config struct {
	// Translate holds the expansion modes, timestamp handling and rules
	Translate translate.Options

	// PipelineConcurrency limits concurrent describe calls
	PipelineConcurrency int

	// ScrapeTimeout bounds a scrape started by Collect. Zero means no bound.
	ScrapeTimeout time.Duration
}

// Result is the outcome of one scrape cycle.
type Result struct {
	// ScrapeID correlates log lines and spans of this scrape
	ScrapeID string

	// Families in exposition order: job families, gauges, timers, meters,
	// histograms, then pipeline stages in job order
	Families []translate.Family

	// Drops lists families and samples rejected during merging
	Drops []translate.Drop

	// Errors holds the TransientFetchErrors that degraded this scrape
	Errors []error

	// Duration is the wall time of the scrape
	Duration time.Duration
}

// Exporter fetches Jenkins data on demand and translates it into metric
// families. It is safe for concurrent use; concurrent scrapes run
// independently.
type Exporter struct {
	mu         sync.RWMutex
	source     Source
	translator *translate.Translator
	cfg        Config

	logger   *slog.Logger
	recorder Recorder
	tracer   trace.Tracer
	fatal    chan error
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// WithRecorder registers a Recorder for scrape outcomes.
func WithRecorder(r Recorder) Option {
	return func(e *Exporter) {
		e.recorder = r
	}
}

// WithTracer sets the tracer for scrape spans. The default is the global
// OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Exporter) {
		e.tracer = t
	}
}

// New creates an Exporter reading from source.
func New(source Source, cfg Config, opts ...Option) *Exporter {
	e := &Exporter{
		source:     source,
		translator: translate.New(cfg.Translate),
		cfg:        normalize(cfg),
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracing.InstrumentationName),
		fatal:      make(chan error, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Update swaps the source and configuration for subsequent scrapes. Scrapes
// already running finish with the previous values.
func (e *Exporter) Update(source Source, cfg Config) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.source = source
	e.translator = translate.New(cfg.Translate)
	e.cfg = normalize(cfg)
}

// Fatal delivers FatalFetchErrors. Only the latest unread error is kept; the
// channel never blocks a scrape.
func (e *Exporter) Fatal() <-chan error {
	return e.fatal
}

func normalize(cfg Config) Config {
	if cfg.PipelineConcurrency < 1 {
		cfg.PipelineConcurrency = DefaultPipelineConcurrency
	}
	return cfg
}

// Scrape runs one scrape cycle. A failed job listing or pipeline describe
// degrades the result and is reported in Result.Errors. A failed metrics fetch
// fails the scrape with a *FatalFetchError.
func (e *Exporter) Scrape(ctx context.Context) (*Result, error) {
	e.mu.RLock()
	source, tr, cfg := e.source, e.translator, e.cfg
	e.mu.RUnlock()

	start := time.Now()
	res := &Result{ScrapeID: uuid.NewString()}
	ctx = logging.WithScrapeID(ctx, res.ScrapeID)

	ctx, span := e.tracer.Start(ctx, "scrape",
		trace.WithAttributes(tracing.ScrapeAttributes(res.ScrapeID, cfg.PipelineConcurrency)...))
	defer span.End()

	if id := tracing.TraceID(ctx); id != "" {
		e.logger.DebugContext(ctx, "scrape started", "trace_id", id)
	} else {
		e.logger.DebugContext(ctx, "scrape started")
	}

	var (
		jobFamilies []translate.Family
		refs        []translate.PipelineRef
		skipped     []jenkins.Malformed
	)
	list, err := source.Jobs(ctx)
	if err != nil {
		terr := &TransientFetchError{Source: jenkins.SourceJobs, Err: err}
		e.logger.WarnContext(ctx, "job listing unavailable, exporting without job metrics", "error", err)
		res.Errors = append(res.Errors, terr)
	} else {
		jobFamilies, refs = tr.Jobs(list.Jobs)
		skipped = append(skipped, list.Skipped...)
	}

	doc, err := source.Metrics(ctx)
	if err != nil {
		ferr := &FatalFetchError{Source: jenkins.SourceMetrics, Err: err}
		e.logger.ErrorContext(ctx, "metrics endpoint unavailable", "error", err)
		e.finish(ctx, span, res, start, ferr)
		e.offerFatal(ferr)
		return nil, ferr
	}

	runs, perrs := e.describe(ctx, source, refs, cfg.PipelineConcurrency)
	res.Errors = append(res.Errors, perrs...)

	skipped = append(skipped, doc.Skipped...)

	coll := translate.NewCollection()
	coll.Add(jobFamilies...)
	coll.Add(tr.Document(doc)...)
	for i, ref := range refs {
		if runs[i] != nil {
			coll.Add(translate.Pipeline(ref, runs[i]))
			for _, m := range runs[i].Skipped {
				m.Key = ref.Job + "/" + m.Key
				skipped = append(skipped, m)
			}
		}
	}
	coll.Skip(skipped...)

	res.Families = coll.Families()
	res.Drops = coll.Drops()
	for _, d := range res.Drops {
		e.logger.DebugContext(ctx, "dropped metric", "name", d.Name, "reason", d.Reason, "detail", d.Detail)
	}

	e.finish(ctx, span, res, start, nil)
	return res, nil
}

// describe fetches the stage breakdown of every pipeline ref with at most
// limit requests in flight. Results are stored by index so output order
// follows the job listing.
func (e *Exporter) describe(ctx context.Context, source Source, refs []translate.PipelineRef, limit int) ([]*jenkins.PipelineRun, []error) {
	runs := make([]*jenkins.PipelineRun, len(refs))
	if len(refs) == 0 {
		return runs, nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	var g errgroup.Group
	g.SetLimit(limit)
	for i, ref := range refs {
		g.Go(func() error {
			jctx := logging.WithJob(ctx, ref.Job)
			jctx, span := e.tracer.Start(jctx, "describe",
				trace.WithAttributes(tracing.PipelineAttributes(ref.Job, ref.Build)...))
			defer span.End()

			run, err := source.Describe(jctx, ref.Job, ref.Build)
			tracing.SetStatus(span, err)
			if err != nil {
				e.logger.WarnContext(jctx, "pipeline stages unavailable", "build", ref.Build, "error", err)
				mu.Lock()
				errs = append(errs, &TransientFetchError{Source: jenkins.SourcePipeline, Job: ref.Job, Err: err})
				mu.Unlock()
				return nil
			}
			runs[i] = run
			return nil
		})
	}
	_ = g.Wait()

	return runs, errs
}

func (e *Exporter) finish(ctx context.Context, span trace.Span, res *Result, start time.Time, err error) {
	res.Duration = time.Since(start)
	tracing.SetScrapeResult(span, len(res.Families), len(res.Drops), len(res.Errors))
	tracing.SetStatus(span, err)

	if e.recorder != nil {
		e.recorder.ObserveScrape(res.Duration, err)
		if len(res.Drops) > 0 {
			e.recorder.ObserveDrops(res.Drops)
		}
	}

	if err == nil {
		e.logger.DebugContext(ctx, "scrape completed",
			"families", len(res.Families),
			"drops", len(res.Drops),
			"transient_errors", len(res.Errors),
			"duration_ms", res.Duration.Milliseconds(),
		)
	}
}

// offerFatal replaces any unread error with err.
func (e *Exporter) offerFatal(err error) {
	for {
		select {
		case e.fatal <- err:
			return
		default:
		}
		select {
		case <-e.fatal:
		default:
		}
	}
}
