package account

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/civictrack/internal/app/store/users"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/authutil"
	"github.com/dalemusser/civictrack/internal/app/system/inputval"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var errBadCredentials = apierr.Unauthorized("Invalid email or password")

// HandleLogin exchanges email and password for a bearer token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userstore.New(h.DB).GetByEmail(ctx, in.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, r, h.Log, errBadCredentials)
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if !authutil.CheckPassword(u.PasswordHash, in.Password) {
		h.Log.Info("login failed", zap.String("user_id", u.ID.Hex()))
		respond.Error(w, r, h.Log, errBadCredentials)
		return
	}
	if u.Status == models.StatusDisabled {
		respond.Error(w, r, h.Log, apierr.Forbidden("This account is disabled"))
		return
	}

	sess, err := h.issue(ctx, r, *u)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("user logged in", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
	respond.OK(w, http.StatusOK, sess, "Login successful")
}
