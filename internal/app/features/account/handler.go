// internal/app/features/account/handler.go
package account

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves registration, login, logout, and the current-user view.
type Handler struct {
	DB       *mongo.Database
	TokenTTL time.Duration
	Log      *zap.Logger
}

// NewHandler constructs an account Handler. Tokens it issues expire after tokenTTL.
func NewHandler(db *mongo.Database, tokenTTL time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		TokenTTL: tokenTTL,
		Log:      logger,
	}
}

type registerInput struct {
	Name     string `json:"name" validate:"required,notblank,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// session is the data returned by register and login.
type session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      any       `json:"user"`
}
