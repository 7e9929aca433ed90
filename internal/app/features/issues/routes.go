// internal/app/features/issues/routes.go
package issues

import (
	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/issues. Listing and reading are public; every
// write needs a signed-in user, with per-issue checks in the handlers.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)
	r.Get("/{id}/comments", h.ServeComments)
	r.Get("/{id}/feedback", h.ServeFeedback)

	r.Group(func(pr chi.Router) {
		pr.Use(am.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}/status", h.HandleStatus)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/comments", h.HandleAddComment)
		pr.Post("/{id}/feedback", h.HandleAddFeedback)
	})

	return r
}
