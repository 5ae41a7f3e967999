package jenkins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	promconfig "github.com/prometheus/common/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName identifies spans started by this package.
const instrumentationName = "mercator-hq/jenkins-exporter/pkg/jenkins"

// maxErrorBody bounds how much of a failed response is kept in FetchError.
const maxErrorBody = 512

// Config contains the settings needed to talk to one Jenkins controller.
type Config struct {
	// URL is the Jenkins root URL (e.g., "https://jenkins.example.com").
	URL string

	// APIKey is the metrics plugin access key.
	APIKey string

	// Username and Password enable HTTP basic auth when Username is set.
	Username string
	Password string

	// Timeout bounds every request. Zero means no client-side timeout.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

// Observer receives the outcome of every request made by a Client.
type Observer interface {
	ObserveFetch(source Source, duration time.Duration, err error)
}

// Client fetches job listings, metrics and pipeline descriptions from Jenkins.
// It is safe for concurrent use.
type Client struct {
	base     *url.URL
	apiKey   string
	http     *http.Client
	logger   *slog.Logger
	observer Observer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver registers an Observer for request outcomes.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a Jenkins client. Credentials are passed through as HTTP
// basic auth via the Prometheus HTTP client configuration.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("jenkins URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid jenkins URL %q: %w", cfg.URL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid jenkins URL %q: scheme must be http or https", cfg.URL)
	}

	httpCfg := promconfig.DefaultHTTPClientConfig
	if cfg.Username != "" {
		httpCfg.BasicAuth = &promconfig.BasicAuth{
			Username: cfg.Username,
			Password: promconfig.Secret(cfg.Password),
		}
	}
	httpCfg.TLSConfig.InsecureSkipVerify = cfg.InsecureSkipVerify
	if err := httpCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid HTTP client configuration: %w", err)
	}

	hc, err := promconfig.NewClientFromConfig(httpCfg, "jenkins_exporter")
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	hc.Timeout = cfg.Timeout

	c := &Client{
		base:   base,
		apiKey: cfg.APIKey,
		http:   hc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Jobs fetches the job listing with the build references for every status
// kind. Jobs that do not decode are listed in JobList.Skipped.
func (c *Client) Jobs(ctx context.Context) (*JobList, error) {
	var list JobList
	if err := c.getJSON(ctx, SourceJobs, c.jobsURL(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Metrics fetches the metrics plugin document.
func (c *Client) Metrics(ctx context.Context) (*MetricsDocument, error) {
	var doc MetricsDocument
	if err := c.getJSON(ctx, SourceMetrics, c.endpoint("metrics", c.apiKey, "metrics").String(), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Describe fetches the stage breakdown of one pipeline build.
func (c *Client) Describe(ctx context.Context, job string, build int64) (*PipelineRun, error) {
	u := c.endpoint("job", job, strconv.FormatInt(build, 10), "wfapi", "describe")
	var run PipelineRun
	if err := c.getJSON(ctx, SourcePipeline, u.String(), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// Ping checks that the metrics endpoint is reachable with the configured key.
func (c *Client) Ping(ctx context.Context) (err error) {
	rawURL := c.endpoint("metrics", c.apiKey, "ping").String()
	ctx, span := c.startSpan(ctx, SourcePing, rawURL)
	start := time.Now()
	defer func() {
		c.observe(SourcePing, time.Since(start), err)
		endSpan(span, err)
	}()

	resp, err := c.do(ctx, SourcePing, rawURL)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// jobsURL builds the tree-filtered job listing URL so Jenkins only serializes
// the fields the exporter reads.
func (c *Client) jobsURL() string {
	fields := make([]string, 0, len(StatusKinds)+1)
	fields = append(fields, "name")
	for _, kind := range StatusKinds {
		fields = append(fields, string(kind)+"[number,timestamp,duration]")
	}

	u := c.endpoint("api", "json")
	q := url.Values{}
	q.Set("tree", "jobs["+strings.Join(fields, ",")+"]")
	u.RawQuery = q.Encode()
	return u.String()
}

// endpoint returns base extended by segments. Each segment is escaped on its
// own, so a key or job name containing '/' stays one segment and appears in
// the URL exactly as url.PathEscape renders it.
func (c *Client) endpoint(segments ...string) *url.URL {
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}

	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.Join(segments, "/")
	u.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	return &u
}

// getJSON performs a GET request and decodes the JSON response into out. The
// response types skip malformed entries themselves, so a ParseError means the
// body as a whole was unusable.
func (c *Client) getJSON(ctx context.Context, source Source, rawURL string, out any) (err error) {
	ctx, span := c.startSpan(ctx, source, rawURL)
	start := time.Now()
	defer func() {
		c.observe(source, time.Since(start), err)
		endSpan(span, err)
	}()

	resp, err := c.do(ctx, source, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ParseError{Source: source, Cause: err}
	}
	return nil
}

// do performs a GET request and returns the response for 2xx status codes.
// Any other outcome is returned as a *FetchError and the body is closed.
func (c *Client) do(ctx context.Context, source Source, rawURL string) (*http.Response, error) {
	safeURL := c.redact(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Source: source, URL: safeURL, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	c.logger.DebugContext(ctx, "fetching from jenkins", "source", source, "url", safeURL)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Source: source, URL: safeURL, Cause: err}
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &FetchError{
			Source:     source,
			URL:        safeURL,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	return resp, nil
}

// startSpan opens a client span for one request. The global tracer provider
// is a no-op unless tracing is enabled.
func (c *Client) startSpan(ctx context.Context, source Source, rawURL string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "jenkins."+string(source),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("jenkins.source", string(source)),
			attribute.String("url.full", c.redact(rawURL)),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *Client) observe(source Source, d time.Duration, err error) {
	if c.observer != nil {
		c.observer.ObserveFetch(source, d, err)
	}
}

// redact masks the API key so URLs can be logged and returned in errors. URLs
// are built by endpoint, which writes the key as url.PathEscape does.
func (c *Client) redact(rawURL string) string {
	if c.apiKey == "" {
		return rawURL
	}
	return strings.ReplaceAll(rawURL, url.PathEscape(c.apiKey), "<secret>")
}
