package account

import (
	"context"
	"errors"
	"net/http"

	tokenstore "github.com/dalemusser/civictrack/internal/app/store/tokens"
	userstore "github.com/dalemusser/civictrack/internal/app/store/users"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/authutil"
	"github.com/dalemusser/civictrack/internal/app/system/inputval"
	"github.com/dalemusser/civictrack/internal/app/system/normalize"
	"github.com/dalemusser/civictrack/internal/app/system/ratelimit"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleRegister creates a citizen account and signs it in.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in.Name = normalize.Name(in.Name)
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users := userstore.New(h.DB)
	email := normalize.Email(in.Email)
	if _, err := users.GetByEmail(ctx, email); err == nil {
		respond.Error(w, r, h.Log, apierr.Conflict("email", userstore.ErrDuplicateEmail.Error()))
		return
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, r, h.Log, err)
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		respond.Error(w, r, h.Log, apierr.Validation("password", err.Error()))
		return
	}

	u, err := users.Create(ctx, models.User{
		FullName:     in.Name,
		Email:        email,
		PasswordHash: hash,
		Phone:        normalize.ID(in.Phone),
		Role:         models.RoleCitizen,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		respond.Error(w, r, h.Log, apierr.Conflict("email", err.Error()))
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	sess, err := h.issue(ctx, r, u)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))
	respond.OK(w, http.StatusCreated, sess, "Registration successful")
}

// issue mints a bearer token for u and stores only its hash.
func (h *Handler) issue(ctx context.Context, r *http.Request, u models.User) (session, error) {
	raw, hash, err := authutil.NewToken()
	if err != nil {
		return session{}, err
	}
	tok, err := tokenstore.New(h.DB).Issue(ctx, u.ID, hash, h.TokenTTL, ratelimit.ClientIP(r), r.UserAgent())
	if err != nil {
		return session{}, err
	}
	return session{Token: raw, ExpiresAt: tok.ExpiresAt, User: u}, nil
}
