// Package api implements the HTTP layer for the audit compliance backend.
// Handlers are methods on *Server. Each handler file is responsible for one
// resource group and only imports the dependencies it actually uses.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/calidad-labs/audit-compliance-backend/internal/store"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// AllowedOrigins is the CORS allow-list for the React frontend.
	AllowedOrigins []string
}

// Server holds all shared dependencies. Each handler file attaches methods
// to this type and uses only the fields it needs.
type Server struct {
	// repo persists and loads audit result documents.
	repo store.Repository

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe.
func NewServer(repo store.Repository, cfg Config, logger *slog.Logger) http.Handler {
	s := &Server{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── API v1 ────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {

		r.Route("/audits", func(r chi.Router) {
			r.Post("/", s.handleSubmitAudit)
			r.Get("/", s.handleListAudits)

			r.Route("/{auditID}", func(r chi.Router) {
				r.Get("/", s.handleGetAudit)
				r.Put("/", s.handleReplaceAudit)
				r.Delete("/", s.handleDeleteAudit)

				// Read-path recomputation for dashboards and PDF export.
				r.Get("/report", s.handleGetAuditReport)
			})
		})

		r.Get("/dashboard/summary", s.handleDashboardSummary)
	})

	return r
}
