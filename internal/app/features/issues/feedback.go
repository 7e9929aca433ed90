package issues

import (
	"context"
	"errors"
	"net/http"
	"time"

	feedbackstore "github.com/dalemusser/civictrack/internal/app/store/feedback"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/authz"
	"github.com/dalemusser/civictrack/internal/app/system/inputval"
	"github.com/dalemusser/civictrack/internal/app/system/normalize"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type feedbackInput struct {
	Feedback string `json:"feedback" validate:"required,notblank,max=1000"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
}

// HandleAddFeedback handles POST /api/issues/{id}/feedback. Each user may
// rate an issue once.
func (h *Handler) HandleAddFeedback(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apierr.Unauthorized("Authentication required"))
		return
	}

	var in feedbackInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in.Feedback = normalize.Text(in.Feedback)
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	is, err := h.loadIssue(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	fb, err := feedbackstore.New(h.DB).Create(ctx, models.Feedback{
		IssueID:   is.ID,
		UserID:    uid,
		Feedback:  in.Feedback,
		Rating:    in.Rating,
		CreatedAt: time.Now().UTC(),
	})
	if errors.Is(err, feedbackstore.ErrDuplicateFeedback) {
		respond.Error(w, r, h.Log, apierr.Conflict("issue_id", err.Error()))
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusCreated, fb, "Feedback submitted successfully")
}

// ServeFeedback handles GET /api/issues/{id}/feedback.
func (h *Handler) ServeFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	is, err := h.loadIssue(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	list, err := feedbackstore.New(h.DB).ListByIssue(ctx, is.ID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusOK, list, "")
}
