package mladashboard

import (
	"context"
	"errors"
	"net/http"

	dashboardstore "github.com/dalemusser/civictrack/internal/app/store/dashboards"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/inputval"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type updateInput struct {
	Priorities      *[]string `json:"priorities,omitempty" validate:"omitempty,max=20,dive,notblank,max=200"`
	Announcements   *[]string `json:"announcements,omitempty" validate:"omitempty,max=20,dive,notblank,max=500"`
	BudgetAllocated *float64  `json:"budget_allocated,omitempty" validate:"omitempty,gte=0"`
	BudgetUtilized  *float64  `json:"budget_utilized,omitempty" validate:"omitempty,gte=0"`
}

// HandleUpdate handles PUT /api/mla-dashboard/{constituencyId}. Omitted
// fields keep their stored values; the merged budget must satisfy
// utilized <= allocated. A concurrent edit that breaks that between the
// read and the write gets 409.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in updateInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if !inputval.AnyProvided(in) {
		respond.Error(w, r, h.Log, apierr.Validation("", "at least one field must be provided"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.constituency(ctx, r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	store := dashboardstore.New(h.DB)
	current, err := store.GetOrCreate(ctx, c.ConstituencyID, c.MLAID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	allocated, utilized := current.BudgetAllocated, current.BudgetUtilized
	if in.BudgetAllocated != nil {
		allocated = *in.BudgetAllocated
	}
	if in.BudgetUtilized != nil {
		utilized = *in.BudgetUtilized
	}
	if utilized > allocated {
		respond.Error(w, r, h.Log, apierr.Validation("budget_utilized", "budget_utilized cannot exceed budget_allocated"))
		return
	}

	d, err := store.Apply(ctx, c.ConstituencyID, c.MLAID, dashboardstore.Update{
		Priorities:      in.Priorities,
		Announcements:   in.Announcements,
		BudgetAllocated: in.BudgetAllocated,
		BudgetUtilized:  in.BudgetUtilized,
	})
	switch {
	case errors.Is(err, dashboardstore.ErrBudgetExceeded):
		// The stored budget changed after it was read above.
		respond.Error(w, r, h.Log, apierr.InUse(err.Error()))
		return
	case err != nil:
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("dashboard updated", zap.String("constituency_id", c.ConstituencyID))
	respond.OK(w, http.StatusOK, d, "Dashboard updated successfully")
}
