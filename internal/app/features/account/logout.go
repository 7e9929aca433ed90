package account

import (
	"context"
	"net/http"

	tokenstore "github.com/dalemusser/civictrack/internal/app/store/tokens"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
)

// HandleLogout revokes the token that authenticated the request.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, r, h.Log, apierr.Unauthorized("Authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := tokenstore.New(h.DB).Revoke(ctx, u.TokenHash); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusOK, nil, "Logged out")
}
