// internal/app/features/departments/handler.go
package departments

import (
	"context"
	"errors"
	"net/http"

	departmentstore "github.com/dalemusser/civictrack/internal/app/store/departments"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/inputval"
	"github.com/dalemusser/civictrack/internal/app/system/normalize"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

type createInput struct {
	Name        string `json:"name" validate:"required,notblank,min=2,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// HandleCreate handles POST /api/departments. Names are unique ignoring case.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in.Name = normalize.Name(in.Name)
	in.Description = normalize.Text(in.Description)
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := departmentstore.New(h.DB).Create(ctx, models.Department{Name: in.Name, Description: in.Description})
	if errors.Is(err, departmentstore.ErrDuplicateName) {
		respond.Error(w, r, h.Log, apierr.Conflict("name", err.Error()))
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusCreated, d, "Department created successfully")
}

// ServeList handles GET /api/departments.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := departmentstore.New(h.DB).List(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusOK, list, "")
}
