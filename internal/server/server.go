package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/keyfort/keyfort/internal/audit"
	"github.com/keyfort/keyfort/internal/auth"
	"github.com/keyfort/keyfort/internal/authz"
	"github.com/keyfort/keyfort/internal/config"
	"github.com/keyfort/keyfort/internal/server/middleware"
	"github.com/keyfort/keyfort/internal/store/postgres"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      *postgres.Store
	auth       *auth.Service
	perms      *authz.Service
	recorder   *audit.Recorder
	auditSvc   *audit.Service
	cfg        *config.Config
}

// New creates a Server with all routes wired.
func New(ctx context.Context, cfg *config.Config, store *postgres.Store, authSvc *auth.Service, perms *authz.Service, recorder *audit.Recorder, auditSvc *audit.Service) *Server {
	router := chi.NewRouter()

	// Global middleware stack. RequestMeta must run after RealIP so the
	// audit trail sees the forwarded client address; Recover and SlowRequest
	// sit outside the auth layers so unauthenticated failures are captured
	// too (with the Anonymous sentinel).
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(middleware.RequestMeta())
	router.Use(middleware.Recover(recorder))
	router.Use(middleware.SlowRequest(recorder, cfg.Audit.SlowThreshold))
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router:   router,
		store:    store,
		auth:     authSvc,
		perms:    perms,
		recorder: recorder,
		auditSvc: auditSvc,
		cfg:      cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Mount API routes on /api/v1 with two sub-groups:
	// 1. Unauthenticated group for auth endpoints (per-IP rate limited).
	// 2. Authenticated group for all other endpoints (per-tenant limited).
	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, 5, 10))

			authConfig := huma.DefaultConfig("Keyfort Auth API", "1.0.0")
			authConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			authAPI := humachi.New(r, authConfig)
			registerAuthRoutes(authAPI, store, authSvc)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret))
			r.Use(middleware.RequireTenant())
			r.Use(middleware.RateLimit(ctx, 100, 200))

			apiConfig := huma.DefaultConfig("Keyfort API", "1.0.0")
			apiConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			api := humachi.New(r, apiConfig)
			registerAPIRoutes(api, store, authSvc, perms, auditSvc)
		})
	})

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
