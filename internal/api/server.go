// Package api provides the HTTP API server and handlers for the guide.
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

	"github.com/visitgevgelija/guide-server/internal/catalog"
	"github.com/visitgevgelija/guide-server/internal/metrics"
	"github.com/visitgevgelija/guide-server/internal/ratelimit"
	"github.com/visitgevgelija/guide-server/internal/service"
	"github.com/visitgevgelija/guide-server/internal/sse"
	"github.com/visitgevgelija/guide-server/internal/store"
)

// Services groups the business services used by the API server.
type Services struct {
	Listing    *service.ListingService
	Favorite   *service.FavoriteService
	Preference *service.PreferenceService
	Search     *service.SearchService
	Homepage   *service.HomepageService
	Catalog    *service.CatalogService
}

// Options holds the edge settings of the server.
type Options struct {
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	// DataDir enables GET /data/{file} when the datasets are local.
	DataDir string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services   *Services
	kv         store.KV
	manifest   *catalog.Manifest
	sseManager *sse.Manager
	sseHandler *sse.Handler
	metrics    *metrics.Metrics
	opts       Options

	router *chi.Mux
	api    huma.API
	logger *slog.Logger

	mutationLimiter *ratelimit.KeyedRateLimiter
	streamLimiter   *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured. m and kv
// may be nil, which disables /metrics and the storage health check.
func NewServer(services *Services, manifest *catalog.Manifest, kv store.KV, sseManager *sse.Manager, m *metrics.Metrics, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 5
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 20
	}

	router := chi.NewRouter()

	s := &Server{
		services:        services,
		kv:              kv,
		manifest:        manifest,
		sseManager:      sseManager,
		metrics:         m,
		opts:            opts,
		router:          router,
		logger:          logger,
		mutationLimiter: ratelimit.New(opts.RateLimitRPS, opts.RateLimitBurst),
		streamLimiter:   ratelimit.New(opts.RateLimitRPS/5, max(opts.RateLimitBurst/4, 1)),
	}
	if sseManager != nil {
		s.sseHandler = sse.NewHandler(sseManager, logger)
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Gevgelija Guide API", "1.0.0")
	humaConfig.Info.Description = "Listings, search, favorites and preferences for the Gevgelija tourism guide."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API for tests and OpenAPI export.
func (s *Server) API() huma.API { return s.api }

// Close stops the rate limiter cleanup goroutines.
func (s *Server) Close() {
	s.mutationLimiter.Stop()
	s.streamLimiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(recoverer(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", deviceHeader},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerDeviceRoutes()
	s.registerCatalogRoutes()
	s.registerSearchRoutes()
	s.registerFavoriteRoutes()
	s.registerPreferenceRoutes()
	s.registerMapsRoutes()

	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	if s.opts.DataDir != "" {
		s.router.Get("/data/{file}", s.handleDataFile)
	}
	if s.sseHandler != nil {
		s.router.With(RateLimitMiddleware(s.streamLimiter, s.logger)).
			Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}
}
