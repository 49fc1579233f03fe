// Package http serves the tool catalog over a small JSON API.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/tools"
)

const (
	maxBodyBytes   = 1 << 20
	requestTimeout = 30 * time.Second
)

// Dispatcher is the tool registry as seen by the server.
type Dispatcher interface {
	Tools() []tools.Tool
	Call(ctx context.Context, name string, params json.RawMessage) (any, error)
	ReadResource(ctx context.Context, uri string) (tools.Resource, error)
}

// Exporter streams ledger rows for file downloads.
type Exporter interface {
	ExportExpenses(ctx context.Context, start, end string) ([]core.Expense, error)
}

// Options tunes the server.
type Options struct {
	RequestsPerMinute int
}

// Server is the HTTP front end of the ledger.
type Server struct {
	http.Server
	tools    Dispatcher
	exporter Exporter
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	logger   *applog.Logger
	calls    *applog.StructuredLogger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, d Dispatcher, exp Exporter, logger *applog.Logger, opts Options) *Server {
	logger = logger.WithComponent(applog.ComponentHTTP)
	ips := security.NewIPResolver()

	s := &Server{
		tools:    d,
		exporter: exp,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		tracer:   trace.NewMiddleware(logger, ips.ClientIP),
		logger:   logger,
		calls:    applog.NewStructuredLogger(logger.WithComponent(applog.ComponentTools)),
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(applog.Middleware(logger, trace.GetRequestID))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady)

	r.Get("/tools", s.handleListTools)
	r.With(s.limiter.Middleware(ips.ClientIP, s.onRateLimited)).
		Post("/tools/{name}", s.handleCallTool)

	r.Get("/resources/categories", s.handleCategories)
	r.Get("/export/{format}", s.handleExport)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		m := s.tracer.GetMetrics()
		s.logger.InfoContext(ctx, "HTTP server shutting down",
			applog.FieldOperation, applog.OpShutdown,
			"total_requests", m.TotalRequests,
			"rate_limited", s.limiter.GetMetrics().Rejected)
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).
		WarnContext(r.Context(), "Rate limit exceeded", applog.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response failed", applog.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
