package issues

import (
	"context"
	"errors"
	"net/http"
	"slices"

	issuestore "github.com/dalemusser/civictrack/internal/app/store/issues"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/authz"
	"github.com/dalemusser/civictrack/internal/app/system/paging"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var statuses = []string{models.IssuePending, models.IssueInProgress, models.IssueResolved, models.IssueRejected}

// ServeList handles GET /api/issues. ?mine=true restricts the list to the
// caller's own reports.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := issuestore.Filter{
		ConstituencyID: query.Get(r, "constituency_id"),
		PanchayatID:    query.Get(r, "panchayat_id"),
		WardID:         query.Get(r, "ward_id"),
		Status:         query.Get(r, "status"),
		Category:       query.Get(r, "category"),
	}
	if f.Status != "" && !slices.Contains(statuses, f.Status) {
		respond.Error(w, r, h.Log, apierr.Validation("status", "status must be one of [pending, in_progress, resolved, rejected]"))
		return
	}
	if f.Category != "" && !slices.Contains(models.Categories, f.Category) {
		respond.Error(w, r, h.Log, apierr.Validation("category", "category is not a known issue category"))
		return
	}
	if query.Get(r, "mine") == "true" {
		_, _, uid, ok := authz.UserCtx(r)
		if !ok {
			respond.Error(w, r, h.Log, apierr.Unauthorized("Authentication required"))
			return
		}
		f.ReportedBy = uid
	}

	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, total, err := issuestore.New(h.DB).List(ctx, f, page)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Page(w, list, page.MetaFor(total))
}

// ServeGet handles GET /api/issues/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	is, err := h.loadIssue(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusOK, is, "")
}

func (h *Handler) loadIssue(ctx context.Context, raw string) (*models.Issue, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, apierr.Validation("id", "id must be a valid id")
	}
	is, err := issuestore.New(h.DB).GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierr.NotFound("Issue not found")
	}
	return is, err
}
