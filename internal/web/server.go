// Package web provides the HTTP server for browsing and starting validation runs.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/beadinspect/internal/config"
	"github.com/JonMunkholm/beadinspect/internal/core"
	"github.com/JonMunkholm/beadinspect/internal/store"
	mw "github.com/JonMunkholm/beadinspect/internal/web/middleware"
)

// RunStore is the optional database view of past runs.
type RunStore interface {
	ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error)
	RunIssues(ctx context.Context, stamp string) ([]core.Issue, error)
}

// Server is the HTTP server for the inspector.
type Server struct {
	cfg       *config.Config
	inspector *core.Inspector
	runs      RunStore // nil without a database

	limiter *RunLimiter

	router *chi.Mux
	server *http.Server
}

// NewServer creates a server that starts runs with inspector. runs may be nil.
func NewServer(cfg *config.Config, inspector *core.Inspector, runs RunStore) *Server {
	s := &Server{
		cfg:       cfg,
		inspector: inspector,
		runs:      runs,
		limiter:   NewRunLimiter(cfg.Server.RunQueueWait),
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Pages
	s.router.Get("/", s.handleIndex)
	s.router.Get("/runs/{stamp}", s.handleRunReport)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/formats", s.handleFormats)

		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{stamp}/issues", s.handleRunIssues)

		r.With(mw.RequireAPIKey(s.cfg.Server.APIKeys)).Post("/runs", s.handleStartRun)
	})
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// resultsDir is where issue logs and reports of this server's runs live.
func (s *Server) resultsDir() string {
	if s.cfg.Inspector.ResultsDir != "" {
		return s.cfg.Inspector.ResultsDir
	}
	return s.cfg.Inspector.DataDir
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		// Pages carry their styles inline and run no scripts.
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'none'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
