// internal/app/features/constituencies/handler.go
package constituencies

import (
	"github.com/dalemusser/civictrack/internal/app/hierarchy"
	"go.uber.org/zap"
)

// Handler serves /api/constituencies. Business rules live in the
// hierarchy service; handlers decode, call, and render.
type Handler struct {
	Hierarchy *hierarchy.Service
	Log       *zap.Logger
}

func NewHandler(svc *hierarchy.Service, logger *zap.Logger) *Handler {
	return &Handler{Hierarchy: svc, Log: logger}
}
