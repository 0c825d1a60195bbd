// Package http serves the cash flow JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/filter"
	applog "cashflow/internal/log"
	"cashflow/internal/middleware/ratelimit"
	"cashflow/internal/middleware/security"
	"cashflow/internal/middleware/trace"
	"cashflow/internal/sheets"
)

// CashFlows is the application service behind the handlers.
type CashFlows interface {
	List(ctx context.Context, q filter.Query) ([]core.CashFlow, error)
	Get(ctx context.Context, id string) (core.CashFlow, error)
	Create(ctx context.Context, d core.Draft) (string, error)
	Update(ctx context.Context, id string, d core.Draft) error
	Delete(ctx context.Context, id string) error
	Reseed(ctx context.Context) (int, error)
	Types(ctx context.Context) ([]string, error)
	Sources(ctx context.Context) ([]string, error)
	Labels(ctx context.Context) ([]string, error)
}

type Server struct {
	http.Server
	svc                CashFlows
	exporter           sheets.Exporter
	logger             *applog.Logger
	rateLimiter        *ratelimit.Limiter
	rateLimitPerMinute int
	detector           *security.Detector
	trustedProxies     []string
	tracer             *trace.Middleware

	shutdownOnce sync.Once
}

type Option func(*Server)

// WithSheetsExporter mounts POST /cash-flows/export/sheets.
func WithSheetsExporter(e sheets.Exporter) Option {
	return func(s *Server) { s.exporter = e }
}

// WithRateLimit sets how many writes a client may make per minute.
func WithRateLimit(requestsPerMinute int) Option {
	return func(s *Server) { s.rateLimitPerMinute = requestsPerMinute }
}

// WithTrustedProxies lets the listed networks set the client address
// through X-Forwarded-For or X-Real-IP.
func WithTrustedProxies(cidrs []string) Option {
	return func(s *Server) { s.trustedProxies = append(s.trustedProxies, cidrs...) }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc CashFlows, opts ...Option) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		svc:      svc,
		detector: security.NewDetector(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.New(applog.Config{Level: slog.LevelInfo, Handler: slog.Default().Handler()})
	}
	for _, cidr := range s.trustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}
	limitCfg := ratelimit.DefaultConfig()
	if s.rateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = s.rateLimitPerMinute
	}
	s.rateLimiter = ratelimit.NewLimiter(limitCfg)
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	h = applog.Middleware(s.logger.WithComponent(applog.ComponentHTTP))(h)
	s.Handler = h

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /cash-flows/setup", s.handleSetup)
	mux.HandleFunc("GET /cash-flows", s.handleList)
	mux.HandleFunc("POST /cash-flows", s.handleCreate)
	mux.HandleFunc("GET /cash-flows/types", s.handleTypes)
	mux.HandleFunc("GET /cash-flows/sources", s.handleSources)
	mux.HandleFunc("GET /cash-flows/labels", s.handleLabels)
	mux.HandleFunc("GET /cash-flows/export", s.handleExport)
	if s.exporter != nil {
		mux.HandleFunc("POST /cash-flows/export/sheets", s.handleExportSheets)
	}
	mux.HandleFunc("GET /cash-flows/{id}", s.handleGet)
	mux.HandleFunc("PUT /cash-flows/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /cash-flows/{id}", s.handleDelete)

	// Method-less patterns lose to every route above, so they only see
	// requests whose method has no handler on that path.
	mux.Handle("/cash-flows", methodNotAllowed("GET, HEAD, POST"))
	mux.HandleFunc("/cash-flows/{id}", func(w http.ResponseWriter, r *http.Request) {
		methodNotAllowed(itemMethods(r.PathValue("id"))).ServeHTTP(w, r)
	})
	if s.exporter != nil {
		mux.Handle("/cash-flows/export/sheets", methodNotAllowed("POST"))
	}
}

func itemMethods(id string) string {
	switch id {
	case "types", "sources", "labels", "export":
		return "GET, HEAD"
	case "setup":
		return "POST"
	default:
		return "GET, HEAD, PUT, DELETE"
	}
}

func methodNotAllowed(allow string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FailResponse(http.StatusMethodNotAllowed, MsgMethodNotAllowed).Header("Allow", allow).Write(w)
	})
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
		s.logStats()
	})
	return shutdownErr
}

func (s *Server) logStats() {
	traced := s.tracer.GetMetrics()
	s.logger.Info("HTTP server stats",
		"total_requests", traced.TotalRequests,
		"server_errors", traced.ServerErrors,
		"suspicious_requests", s.detector.GetMetrics().SuspiciousRequests,
		"rate_limited", s.rateLimiter.Rejected())
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldComponent, applog.ComponentRateLimit,
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	FailResponse(http.StatusTooManyRequests, MsgRateLimited).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
