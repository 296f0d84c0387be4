package routes

import (
	"net/http"

	"github.com/BradenHooton/admintable/internal/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes.
type Handlers struct {
	Sessions *handlers.SessionHandler
	Posts    *handlers.PostHandler
	Export   *handlers.ExportHandler
}

// RegisterRoutes registers all application routes. rateLimit wraps every
// session endpoint; health and metrics stay outside it.
func RegisterRoutes(router chi.Router, h Handlers, rateLimit func(http.Handler) http.Handler) {
	router.Get("/health", health)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/sessions", func(r chi.Router) {
		r.Use(rateLimit)

		r.Post("/", h.Sessions.CreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Sessions.GetSession)
			r.Delete("/", h.Sessions.DeleteSession)

			// Filters and navigation
			r.Put("/tab", h.Sessions.SwitchTab)
			r.Put("/search", h.Sessions.SetSearch)
			r.Put("/age", h.Sessions.SetAge)
			r.Post("/reset", h.Sessions.ResetFilters)
			r.Post("/page/{action}", h.Sessions.Navigate)
			r.Put("/sorting", h.Sessions.SetSorting)
			r.Post("/refresh", h.Sessions.Refresh)

			// Post mutations
			r.Post("/users/{userID}/posts", h.Posts.CreatePost)
			r.Put("/posts/{postID}", h.Posts.UpdatePost)
			r.Post("/posts/{postID}/delete", h.Posts.RequestDelete)
			r.Post("/confirmation/{confirmationID}", h.Posts.Confirm)
			r.Delete("/confirmation", h.Posts.Dismiss)

			r.Get("/export.xlsx", h.Export.ExportXLSX)
		})
	})
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
