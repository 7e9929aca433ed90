package issues

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	issuestore "github.com/dalemusser/civictrack/internal/app/store/issues"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/authz"
	"github.com/dalemusser/civictrack/internal/app/system/inputval"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type statusInput struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress resolved rejected"`
	Note   string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// HandleStatus handles PUT /api/issues/{id}/status. Only the MLA of the
// issue's constituency or an admin may move an issue.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apierr.Unauthorized("Authentication required"))
		return
	}

	var in statusInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	is, err := h.loadIssue(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	c, err := h.Hierarchy.ConstituencyByCode(ctx, is.ConstituencyID)
	if err != nil && apierr.KindOf(err) != apierr.KindNotFound {
		respond.Error(w, r, h.Log, err)
		return
	}
	// An issue whose constituency is gone can still be handled by an admin.
	if !authz.IsAdmin(r) && !authz.CanManageConstituency(r, c) {
		respond.Error(w, r, h.Log, apierr.Forbidden("Only the constituency's MLA or an admin can change issue status"))
		return
	}

	if !canTransition(is.Status, in.Status) {
		respond.Error(w, r, h.Log, apierr.Validation("status",
			fmt.Sprintf("cannot change status from %s to %s", is.Status, in.Status)))
		return
	}

	updated, err := issuestore.New(h.DB).Transition(ctx, is.ID, is.Status, in.Status, in.Note)
	switch {
	case errors.Is(err, issuestore.ErrStatusChanged):
		respond.Error(w, r, h.Log, apierr.InUse(err.Error()))
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		respond.Error(w, r, h.Log, apierr.NotFound("Issue not found"))
		return
	case err != nil:
		respond.Error(w, r, h.Log, err)
		return
	}

	h.Log.Info("issue status changed",
		zap.String("ticket", updated.Ticket),
		zap.String("from", is.Status),
		zap.String("to", updated.Status),
		zap.String("by", uid.Hex()))

	if updated.ReportedBy != uid {
		h.notify(updated.ReportedBy, models.NotifyIssueStatus,
			fmt.Sprintf("Your issue %s is now %s", updated.Ticket, updated.Status), updated.ID)
	}
	respond.OK(w, http.StatusOK, updated, "Issue status updated successfully")
}
