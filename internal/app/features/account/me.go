package account

import (
	"context"
	"net/http"

	constituencystore "github.com/dalemusser/civictrack/internal/app/store/constituencies"
	userstore "github.com/dalemusser/civictrack/internal/app/store/users"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/authz"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/dalemusser/civictrack/internal/domain/models"
)

type meResponse struct {
	models.User
	// Constituencies the user represents (MLAs only).
	Represents []models.Constituency `json:"represents,omitempty"`
}

// ServeMe returns the signed-in user's profile.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apierr.Unauthorized("Authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userstore.New(h.DB).GetByID(ctx, uid)
	if err != nil {
		respond.Error(w, r, h.Log, apierr.Unauthorized("Authentication required"))
		return
	}

	out := meResponse{User: *u}
	if role == models.RoleMLA {
		cs, err := constituencystore.New(h.DB).ListByMLA(ctx, uid)
		if err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		out.Represents = cs
	}
	respond.OK(w, http.StatusOK, out, "")
}
