package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"activityhub/internal/handler"
	"activityhub/internal/httputil"
	authmw "activityhub/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AccountHandler  *handler.AccountHandler
	ActivityHandler *handler.ActivityHandler
	CommentHandler  *handler.CommentHandler
	FollowHandler   *handler.FollowHandler
	PhotoHandler    *handler.PhotoHandler
	ProfileHandler  *handler.ProfileHandler
	HostPolicy      authmw.HostChecker
	JWTSecret       string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public routes - no authentication required
	r.Post("/account/register", cfg.AccountHandler.Register)
	r.Post("/account/login", cfg.AccountHandler.Login)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/account", cfg.AccountHandler.Current)

		r.Route("/activities", func(r chi.Router) {
			r.Get("/", cfg.ActivityHandler.List)
			r.Post("/", cfg.ActivityHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.ActivityHandler.Details)
				r.With(authmw.RequireHost(cfg.HostPolicy)).Put("/", cfg.ActivityHandler.Edit)
				r.With(authmw.RequireHost(cfg.HostPolicy)).Delete("/", cfg.ActivityHandler.Delete)
				r.Post("/attend", cfg.ActivityHandler.Attend)

				r.Get("/comments", cfg.CommentHandler.List)
				r.Post("/comments", cfg.CommentHandler.Create)
				r.Get("/comments/stream", cfg.CommentHandler.Stream)
			})
		})

		r.Post("/follow/{username}", cfg.FollowHandler.Toggle)
		r.Get("/follow/{username}", cfg.FollowHandler.List)

		r.Put("/profiles", cfg.ProfileHandler.Edit)
		r.Get("/profiles/{username}", cfg.ProfileHandler.Details)
		r.Get("/profiles/{username}/activities", cfg.ProfileHandler.Activities)

		r.Post("/photos", cfg.PhotoHandler.Add)
		r.Post("/photos/{id}/setMain", cfg.PhotoHandler.SetMain)
		r.Delete("/photos/{id}", cfg.PhotoHandler.Delete)
	})

	return r
}
