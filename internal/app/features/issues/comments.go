package issues

import (
	"context"
	"fmt"
	"net/http"
	"time"

	commentstore "github.com/dalemusser/civictrack/internal/app/store/comments"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/authz"
	"github.com/dalemusser/civictrack/internal/app/system/inputval"
	"github.com/dalemusser/civictrack/internal/app/system/normalize"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type commentInput struct {
	Text string `json:"text" validate:"required,notblank,min=1,max=1000"`
}

// HandleAddComment handles POST /api/issues/{id}/comments.
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	_, name, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apierr.Unauthorized("Authentication required"))
		return
	}

	var in commentInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in.Text = normalize.Text(in.Text)
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

	c, err := commentstore.New(h.DB).Create(ctx, models.Comment{
		IssueID:   is.ID,
		UserID:    uid,
		UserName:  name,
		Text:      in.Text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if is.ReportedBy != uid {
		h.notify(is.ReportedBy, models.NotifyIssueComment,
			fmt.Sprintf("%s commented on your issue %s", name, is.Ticket), is.ID)
	}
	respond.OK(w, http.StatusCreated, c, "Comment added successfully")
}

// ServeComments handles GET /api/issues/{id}/comments, oldest first.
func (h *Handler) ServeComments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	is, err := h.loadIssue(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	list, err := commentstore.New(h.DB).ListByIssue(ctx, is.ID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusOK, list, "")
}
