// internal/app/features/constituencies/routes.go
package constituencies

import (
	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/constituencies. Reads are public; changes to
// constituencies are admin only, and admins or the owning MLA may add
// panchayats.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(am.RequireRole(models.RoleAdmin))
		pr.Post("/", h.HandleCreate)
		pr.Post("/bulk", h.HandleBulkCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	r.With(am.RequireRole(models.RoleAdmin, models.RoleMLA)).
		Post("/{id}/panchayats", h.HandleAddPanchayats)

	return r
}
