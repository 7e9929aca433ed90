// internal/app/features/issues/handler.go
package issues

import (
	"context"

	"github.com/dalemusser/civictrack/internal/app/hierarchy"
	notificationstore "github.com/dalemusser/civictrack/internal/app/store/notifications"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Transactor runs fn atomically where the server allows it.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Handler serves /api/issues and its comment and feedback sub-resources.
type Handler struct {
	DB        *mongo.Database
	Hierarchy *hierarchy.Service
	Tx        Transactor
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, svc *hierarchy.Service, tx Transactor, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Hierarchy: svc, Tx: tx, Log: logger}
}

// notify stores an in-app notification. Failures are logged and never
// surface to the caller.
func (h *Handler) notify(userID primitive.ObjectID, kind, msg string, target primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()

	if _, err := notificationstore.New(h.DB).Create(ctx, userID, kind, msg, &target); err != nil {
		h.Log.Warn("notification not stored",
			zap.String("user_id", userID.Hex()),
			zap.String("type", kind),
			zap.Error(err))
	}
}
