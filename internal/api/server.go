package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ywlim06-debug/dolddari-coach/internal/api/docs"
	"github.com/ywlim06-debug/dolddari-coach/internal/api/middleware"
	sessionapi "github.com/ywlim06-debug/dolddari-coach/internal/api/session"
	"github.com/ywlim06-debug/dolddari-coach/internal/config"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/response"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(sessionHandler *sessionapi.Handler, logger *zap.Logger, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                         // Recover from panics
	r.Use(chimiddleware.RequestID)                         // Add request ID
	r.Use(middleware.Logger(logger))                       // Log requests
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))         // Handle CORS
	r.Use(chimiddleware.Timeout(cfg.ServerRequestTimeout)) // Generation can take a while

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	sessionapi.RegisterRoutes(r, sessionHandler)

	return r
}
