// internal/app/features/mladashboard/handler.go
package mladashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/civictrack/internal/app/hierarchy"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/authz"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves /api/mla-dashboard/{constituencyId}. Only the
// constituency's MLA and admins may read or change it.
type Handler struct {
	DB        *mongo.Database
	Hierarchy *hierarchy.Service
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, svc *hierarchy.Service, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Hierarchy: svc, Log: logger}
}

// dashboardView is the dashboard document plus live issue numbers.
type dashboardView struct {
	models.MLADashboard
	Stats models.IssueStats `json:"stats"`
}

// constituency loads the {constituencyId} path parameter and checks the
// caller may manage it.
func (h *Handler) constituency(ctx context.Context, r *http.Request) (*models.Constituency, error) {
	c, err := h.Hierarchy.ConstituencyByCode(ctx, chi.URLParam(r, "constituencyId"))
	if err != nil {
		return nil, err
	}
	if !authz.CanManageConstituency(r, c) {
		return nil, apierr.Forbidden("You can only access the dashboard of your own constituency")
	}
	return c, nil
}
