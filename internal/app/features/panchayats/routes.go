// internal/app/features/panchayats/routes.go
package panchayats

import (
	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/panchayats. Reads are public; writes need an
// admin or the MLA of the panchayat's constituency.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/constituency/{constituency_id}", h.ServeByConstituency)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(am.RequireRole(models.RoleAdmin, models.RoleMLA))
		pr.Post("/", h.HandleCreate)
		pr.Post("/bulk", h.HandleBulkCreate)
		pr.Put("/add-wards/{id}", h.HandleAddWards)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
