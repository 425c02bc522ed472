// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/biblio/internal/catalog/book"
	"github.com/taibuivan/biblio/internal/catalog/category"
	"github.com/taibuivan/biblio/internal/catalog/contributor"
	"github.com/taibuivan/biblio/internal/catalog/language"
	"github.com/taibuivan/biblio/internal/catalog/publisher"
	"github.com/taibuivan/biblio/internal/dashboard"
	"github.com/taibuivan/biblio/internal/platform/config"
	"github.com/taibuivan/biblio/internal/platform/constants"
	"github.com/taibuivan/biblio/internal/platform/middleware"
	"github.com/taibuivan/biblio/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles accounts, sessions, and recovery flows.
	Auth *auth.Handler

	// Book handles the catalogue records and discovery.
	Book *book.Handler

	// Category handles the hierarchical subject tree.
	Category *category.Handler

	// Contributor handles the people credited on records.
	Contributor *contributor.Handler

	// Publisher handles publishing houses.
	Publisher *publisher.Handler

	// Language handles the language reference list.
	Language *language.Handler

	// Dashboard serves the staff admin panel counters.
	Dashboard *dashboard.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Public Uploads
	// Covers, PDFs, and category images are served straight off the disk.
	fileServer := http.StripPrefix(cfg.PublicBaseURL+"/", http.FileServer(http.Dir(cfg.UploadDir)))
	r.Handle(cfg.PublicBaseURL+"/*", fileServer)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.PublicRoutes())

		// Visitor-facing catalogue
		api.Route("/catalog", func(catalog chi.Router) {
			catalog.Mount("/books", h.Book.PublicRoutes())
			catalog.Mount("/categories", h.Category.PublicRoutes())
			catalog.Mount("/contributors", h.Contributor.PublicRoutes())
			catalog.Mount("/publishers", h.Publisher.PublicRoutes())
			catalog.Mount("/languages", h.Language.PublicRoutes())
		})

		// Staff surface. Each sub-router enforces its own capability; the
		// outer gate just keeps anonymous traffic out early.
		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireStaff)

			admin.Mount("/users", h.Auth.AdminRoutes())
			admin.Mount("/dashboard", h.Dashboard.AdminRoutes())

			admin.Route("/catalog", func(catalog chi.Router) {
				catalog.Mount("/books", h.Book.AdminRoutes())
				catalog.Mount("/categories", h.Category.AdminRoutes())
				catalog.Mount("/contributors", h.Contributor.AdminRoutes())
				catalog.Mount("/publishers", h.Publisher.AdminRoutes())
				catalog.Mount("/languages", h.Language.AdminRoutes())
			})
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
