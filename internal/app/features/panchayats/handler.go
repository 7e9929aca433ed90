// internal/app/features/panchayats/handler.go
package panchayats

import (
	"context"
	"net/http"

	"github.com/dalemusser/civictrack/internal/app/hierarchy"
	"github.com/dalemusser/civictrack/internal/app/system/authz"
	"go.uber.org/zap"
)

// Handler serves /api/panchayats.
type Handler struct {
	Hierarchy *hierarchy.Service
	Log       *zap.Logger
}

func NewHandler(svc *hierarchy.Service, logger *zap.Logger) *Handler {
	return &Handler{Hierarchy: svc, Log: logger}
}

// scoped limits the request's changes to constituencies the caller
// manages: admins any, MLAs their own.
func scoped(r *http.Request) context.Context {
	return hierarchy.WithGuard(r.Context(), authz.ConstituencyGuard(r))
}
