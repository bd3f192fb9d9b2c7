// Package web provides the HTTP server for text imports and the
// read-only listings of imported data.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/lineimport/internal/config"
	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/JonMunkholm/lineimport/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Catalog is the read side of the store used by the listing endpoints.
type Catalog interface {
	Ping(ctx context.Context) error
	ListTodos(ctx context.Context) ([]*core.TodoItem, error)
	ListEmployees(ctx context.Context) ([]*core.Employee, error)
	ListProjects(ctx context.Context) ([]*core.Project, error)
	ListTimeEntries(ctx context.Context, filter core.TimeEntryFilter) ([]*core.TimeEntry, error)
	ListGiftCategories(ctx context.Context) ([]*core.GiftCategory, error)
	ListWishlists(ctx context.Context) ([]*core.Wishlist, error)
	ListRuns(ctx context.Context, limit int) ([]core.ImportRun, error)
}

// Server is the HTTP server for the import application.
type Server struct {
	cfg     *config.Config
	catalog Catalog
	env     core.Env
	limiter *core.ImportLimiter
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server. env supplies the transaction source and
// recorder handed to every import; its Reader is replaced per request.
func NewServer(cfg *config.Config, catalog Catalog, env core.Env) *Server {
	s := &Server{
		cfg:     cfg,
		catalog: catalog,
		env:     env,
		limiter: core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/formats", s.handleListFormats)
		r.Post("/import/{format}", s.handleImport)
		r.Get("/imports", s.handleListRuns)

		r.Get("/todos", s.handleListTodos)
		r.Get("/employees", s.handleListEmployees)
		r.Get("/projects", s.handleListProjects)
		r.Get("/timeentries", s.handleListTimeEntries)
		r.Get("/gift-categories", s.handleListGiftCategories)
		r.Get("/wishlists", s.handleListWishlists)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown waits for running imports, then stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if active := s.limiter.ActiveCount(); active > 0 {
		slog.Info("waiting for imports to complete", "active", active)
		if err := s.limiter.WaitForDrain(ctx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
		}
	}

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// LimiterStatus reports the import slots in use.
func (s *Server) LimiterStatus() core.LimiterStatus {
	return s.limiter.Status()
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// healthStatus is the body of GET /healthz.
type healthStatus struct {
	Status  string             `json:"status"`
	Imports core.LimiterStatus `json:"imports"`
	Time    time.Time          `json:"time"`
}
