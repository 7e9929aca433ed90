// internal/app/features/meetings/routes.go
package meetings

import (
	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(am.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.With(am.RequireRole(models.RoleAdmin, models.RoleMLA)).Post("/", h.HandleCreate)
	return r
}
