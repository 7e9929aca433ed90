package issues

import (
	"context"
	"net/http"

	commentstore "github.com/dalemusser/civictrack/internal/app/store/comments"
	feedbackstore "github.com/dalemusser/civictrack/internal/app/store/feedback"
	issuestore "github.com/dalemusser/civictrack/internal/app/store/issues"
	votestore "github.com/dalemusser/civictrack/internal/app/store/votes"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/authz"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /api/issues/{id}. The reporter or an admin
// may delete; votes, comments and feedback go with the issue.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	is, err := h.loadIssue(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if !authz.IsOwnerOrAdmin(r, is.ReportedBy) {
		respond.Error(w, r, h.Log, apierr.Forbidden("Only the reporter or an admin can delete this issue"))
		return
	}

	err = h.Tx.Run(ctx, func(ctx context.Context) error {
		n, err := issuestore.New(h.DB).Delete(ctx, is.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apierr.NotFound("Issue not found")
		}
		if _, err := votestore.New(h.DB).DeleteByIssue(ctx, is.ID); err != nil {
			return err
		}
		if _, err := commentstore.New(h.DB).DeleteByIssue(ctx, is.ID); err != nil {
			return err
		}
		_, err = feedbackstore.New(h.DB).DeleteByIssue(ctx, is.ID)
		return err
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	h.Log.Info("issue deleted", zap.String("ticket", is.Ticket))
	respond.OK(w, http.StatusOK, nil, "Issue deleted successfully")
}
