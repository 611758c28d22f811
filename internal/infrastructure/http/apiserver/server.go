// Package apiserver assembles the JSON API router and runs the HTTP server
package apiserver

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/render"
	"github.com/alchemorsel/cookbook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/alchemorsel/cookbook/pkg/healthcheck"
)

const compressionLevel = 5

var compressibleTypes = []string{
	"application/json",
	"text/plain",
	"text/html",
}

// Handlers groups the resource handlers mounted under /api
type Handlers struct {
	Recipes *handlers.RecipeHandlers
	AI      *handlers.AIHandlers
	Grocery *handlers.GroceryHandlers
	Photos  *handlers.PhotoHandlers
	Drafts  *handlers.DraftHandlers
}

// Server represents the JSON API HTTP server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	handler http.Handler
}

// NewServer builds the router and the underlying http.Server
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	h Handlers,
	metrics *monitoring.Metrics,
	tracing *monitoring.TracingProvider,
	health *healthcheck.HealthCheck,
	aiLimiter *middleware.ClientRateLimiter,
) *Server {
	s := &Server{
		config: cfg,
		logger: logger.Named("apiserver"),
	}

	router := s.routes(h, metrics, health, aiLimiter)
	s.handler = otelhttp.NewHandler(router, cfg.App.Name,
		otelhttp.WithTracerProvider(tracing.TracerProvider()),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)

	s.server = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     zap.NewStdLog(s.logger),
	}

	return s
}

func (s *Server) routes(
	h Handlers,
	metrics *monitoring.Metrics,
	health *healthcheck.HealthCheck,
	aiLimiter *middleware.ClientRateLimiter,
) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestIDHeader)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.Security(s.config.IsProduction()))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   s.config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           86400,
	}).Handler)
	r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))
	if s.config.Server.EnableCompression {
		compressor := chimiddleware.NewCompressor(compressionLevel, compressibleTypes...)
		compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
			return brotli.NewWriterLevel(w, level)
		})
		r.Use(compressor.Handler)
	}
	r.Use(middleware.JSONOnly(s.logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, r, s.logger, errors.NewNotFoundError("route"))
	})

	r.Method(http.MethodGet, "/health", health.Handler())
	if s.config.Monitoring.EnableMetrics {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.Recipes.List)
			r.Post("/", h.Recipes.Create)
			r.Get("/tags", h.Recipes.Tags)

			r.With(aiLimiter.Limit).Post("/ai-add", h.AI.AddWithAI)
			r.With(aiLimiter.Limit).Post("/generate", h.AI.Generate)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Recipes.Get)
				r.Put("/", h.Recipes.Update)
				r.Delete("/", h.Recipes.Delete)
				r.Get("/pdf", h.Recipes.PDF)
				r.Get("/qr", h.Recipes.QR)
				r.With(aiLimiter.Limit).Post("/ai-regenerate", h.AI.Regenerate)
			})
		})

		r.With(aiLimiter.Limit).Post("/estimate-macros", h.AI.EstimateMacros)
		r.With(aiLimiter.Limit).Post("/convert-ingredients", h.AI.ConvertIngredients)

		r.Route("/grocery", func(r chi.Router) {
			r.Get("/", h.Grocery.List)
			r.Post("/", h.Grocery.Add)
			r.Patch("/", h.Grocery.Patch)
			r.Delete("/", h.Grocery.Delete)
			r.Get("/pdf", h.Grocery.PDF)
			r.With(aiLimiter.Limit).Post("/normalize", h.Grocery.Normalize)
		})

		r.Route("/unsplash", func(r chi.Router) {
			r.Get("/search", h.Photos.Search)
			r.Post("/download", h.Photos.TrackDownload)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", h.Drafts.List)
			r.Post("/", h.Drafts.Start)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Drafts.Get)
				r.Put("/", h.Drafts.Save)
				r.Delete("/", h.Drafts.Delete)
				r.Post("/revert", h.Drafts.Revert)
				r.Post("/commit", h.Drafts.Commit)
			})
		})
	})

	return r
}

// Handler returns the fully wrapped handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listen address and serves in the background. Bind
// errors are returned so startup fails fast.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	s.logger.Info("Starting API server", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server stopped unexpectedly", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
