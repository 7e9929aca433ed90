// internal/app/features/mladashboard/routes.go
package mladashboard

import (
	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/mla-dashboard.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(am.RequireRole(models.RoleAdmin, models.RoleMLA))

	r.Get("/{constituencyId}", h.ServeDashboard)
	r.Get("/{constituencyId}/stats", h.ServeStats)
	r.Put("/{constituencyId}", h.HandleUpdate)
	return r
}
