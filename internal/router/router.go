package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pfe-app/backend/internal/api"
	"github.com/pfe-app/backend/internal/api/auth"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            *auth.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
	RequireAdminMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Heartbeat endpoint, public
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			api.WriteJSONResponse(w, req, http.StatusOK, map[string]string{
				"status":    "ok",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		})

		r.Route("/users", func(r chi.Router) {
			// --- Public routes ---
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)

			// --- Protected routes ---
			r.Group(func(r chi.Router) {
				r.Use(cfg.AuthenticateMiddleware)
				r.Get("/me", cfg.AuthHandler.GetCurrentUser)
			})

			// --- Admin routes ---
			r.Group(func(r chi.Router) {
				r.Use(cfg.AuthenticateMiddleware)
				r.Use(cfg.RequireAdminMiddleware)
				r.Get("/{userID}", cfg.AuthHandler.GetUser)
			})
		})
	})

	return r
}
