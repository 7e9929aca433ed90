package issues

import (
	"context"
	"net/http"
	"time"

	issuestore "github.com/dalemusser/civictrack/internal/app/store/issues"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/authz"
	"github.com/dalemusser/civictrack/internal/app/system/inputval"
	"github.com/dalemusser/civictrack/internal/app/system/normalize"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.uber.org/zap"
)

type createInput struct {
	Title          string `json:"title" validate:"required,notblank,min=3,max=200"`
	Description    string `json:"description" validate:"required,notblank,min=10,max=5000"`
	Category       string `json:"category" validate:"required,oneof=road water sanitation electricity health education other"`
	ConstituencyID string `json:"constituency_id" validate:"required,notblank"`
	PanchayatID    string `json:"panchayat_id" validate:"required,notblank"`
	WardID         string `json:"ward_id" validate:"required,notblank"`
	Location       string `json:"location,omitempty" validate:"omitempty,max=300"`
}

// HandleCreate handles POST /api/issues.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apierr.Unauthorized("Authentication required"))
		return
	}

	var in createInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in.Title = normalize.Name(in.Title)
	in.Description = normalize.Text(in.Description)
	in.Location = normalize.Name(in.Location)
	in.ConstituencyID = normalize.ID(in.ConstituencyID)
	in.PanchayatID = normalize.ID(in.PanchayatID)
	in.WardID = normalize.ID(in.WardID)
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Hierarchy.ResolveWard(ctx, in.ConstituencyID, in.PanchayatID, in.WardID); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	now := time.Now().UTC()
	is, err := issuestore.New(h.DB).Create(ctx, models.Issue{
		Ticket:         issuestore.NewTicket(),
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		Location:       in.Location,
		Status:         models.IssuePending,
		ConstituencyID: in.ConstituencyID,
		PanchayatID:    in.PanchayatID,
		WardID:         in.WardID,
		ReportedBy:     uid,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	h.Log.Info("issue reported",
		zap.String("ticket", is.Ticket),
		zap.String("constituency_id", is.ConstituencyID),
		zap.String("reported_by", uid.Hex()))
	respond.OK(w, http.StatusCreated, is, "Issue reported successfully")
}
