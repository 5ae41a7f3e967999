package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/route"

	"mercator-hq/jenkins-exporter/pkg/config"
	"mercator-hq/jenkins-exporter/pkg/telemetry/health"
	"mercator-hq/jenkins-exporter/pkg/telemetry/metrics"
)

// Server serves the exposition, the health probes and a landing page.
type Server struct {
	cfg        *config.Config
	handler    http.Handler
	logger     *slog.Logger
	httpServer *http.Server

	mu      sync.Mutex
	running bool
}

// Option configures a Server.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	version health.VersionInfo
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithVersion sets the build information served on the version endpoint and
// the landing page. The default is health.CurrentVersion().
func WithVersion(info health.VersionInfo) Option {
	return func(o *options) {
		o.version = info
	}
}

// New builds the routes for cfg. Everything gathered from registry is served
// on cfg.Exporter.MetricsPath; request durations of every route are recorded
// on registry as well.
func New(cfg *config.Config, registry *prometheus.Registry, checker *health.Checker, opts ...Option) *Server {
	o := options{
		logger:  slog.Default(),
		version: health.CurrentVersion(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		cfg:    cfg,
		logger: o.logger,
	}
	s.handler = s.routes(registry, checker, o.version)
	return s
}

func (s *Server) routes(registry *prometheus.Registry, checker *health.Checker, info health.VersionInfo) http.Handler {
	duration := requestDuration(registry, s.cfg.Telemetry.Metrics.Namespace)

	r := route.New().WithInstrumentation(func(handlerName string, h http.HandlerFunc) http.HandlerFunc {
		return promhttp.InstrumentHandlerDuration(
			duration.MustCurryWith(prometheus.Labels{"handler": handlerName}), h)
	})

	metricsHandler := metrics.Handler(registry, metrics.HandlerConfig{
		Timeout: s.cfg.Exporter.ScrapeTimeout,
		Logger:  s.logger,
	})

	get := func(path string, h http.HandlerFunc) {
		r.Get(path, h)
		r.Head(path, h)
	}
	get(s.cfg.Exporter.MetricsPath, metricsHandler.ServeHTTP)
	get(health.LivenessPath, checker.LivenessHandler())
	get(health.ReadinessPath, checker.ReadinessHandler())
	get(health.VersionPath, health.VersionHandler(info))
	get("/", landingPage(s.cfg.Exporter.MetricsPath, info))

	return r
}

// requestDuration registers the route histogram, reusing an existing one when
// the registry already has it.
func requestDuration(registry prometheus.Registerer, namespace string) *prometheus.HistogramVec {
	vec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests served by the exporter",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"handler", "code"},
	)
	if err := registry.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		panic(err)
	}
	return vec
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Exporter.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Exporter.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		_ = ln.Close()
		return errors.New("server is already running")
	}
	s.running = true
	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Exporter.ReadTimeout,
		WriteTimeout: s.cfg.Exporter.WriteTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("serving metrics",
			"address", ln.Addr().String(),
			"metrics_path", s.cfg.Exporter.MetricsPath,
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("initiating graceful shutdown", "timeout", s.cfg.Exporter.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Exporter.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error during server shutdown", "error", err)
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
