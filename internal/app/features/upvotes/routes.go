// internal/app/features/upvotes/routes.go
package upvotes

import (
	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/upvotes. Every route needs a signed-in user.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(am.RequireSignedIn)

	r.Post("/{issue_id}", h.HandleUpvote)
	r.Delete("/{issue_id}", h.HandleRemove)
	r.Get("/{issue_id}/check", h.ServeCheck)

	return r
}
