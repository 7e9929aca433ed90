// internal/app/features/account/routes.go
package account

import (
	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/dalemusser/civictrack/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/auth. Register and login share one per-IP limiter.
func Routes(h *Handler, am *auth.Manager, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(ratelimit.Middleware(limiter))
		pr.Post("/register", h.HandleRegister)
		pr.Post("/login", h.HandleLogin)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(am.RequireSignedIn)
		pr.Post("/logout", h.HandleLogout)
		pr.Get("/me", h.ServeMe)
	})

	return r
}
