// Package api provides the HTTP API server and handlers for the Tariffly
// backend. Handlers are registered through huma on top of a chi router;
// responses travel in a versioned envelope.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/store"
)

// Version is the API version reported by the health endpoint.
const Version = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *store.Store
	services        *Services
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *RateLimiter
	startedAt       time.Time
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(cfg *config.Config, st *store.Store, services *Services, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(authMiddleware(services.Auth))

	// Credential-guessing protection on the auth endpoints only.
	authRateLimiter := NewRateLimiter(20, time.Minute, 10)
	router.Use(pathPrefixMiddleware("/api/v1/auth/", RateLimitMiddleware(authRateLimiter, logger)))

	title := cfg.Server.Name
	if title == "" {
		title = "Tariffly API"
	}

	humaConfig := huma.DefaultConfig(title, Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:           st,
		services:        services,
		router:          router,
		api:             api,
		logger:          logger,
		authRateLimiter: authRateLimiter,
		startedAt:       time.Now(),
	}

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

// registerRoutes registers every operation on the huma API.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerProductRoutes()
	s.registerOrderRoutes()
	s.registerClassificationRoutes()
	s.registerLandedCostRoutes()
	s.registerESGRoutes()
	s.registerDocumentRoutes()
	s.registerBillingRoutes()
}
