package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/cineshelf/cineshelf/internal/api/auth"
	"github.com/cineshelf/cineshelf/internal/api/health"
	"github.com/cineshelf/cineshelf/internal/api/movie"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            *auth.AuthHandlerImpl
	MovieHandler           *movie.HandlerImpl
	HealthHandler          *health.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", cfg.HealthHandler.Health)
	r.Get("/health/ready", cfg.HealthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {

		// Public auth routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Route("/movies", func(r chi.Router) {
				r.Post("/", cfg.MovieHandler.CreateMovie)
				r.Get("/", cfg.MovieHandler.ListMovies)
				r.Get("/{movieID}", cfg.MovieHandler.GetMovie)
				r.Patch("/{movieID}", cfg.MovieHandler.UpdateMovie)
				r.Delete("/{movieID}", cfg.MovieHandler.DeleteMovie)
			})
		})
	})

	return r
}
