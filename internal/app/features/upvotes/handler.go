// internal/app/features/upvotes/handler.go
package upvotes

import (
	"context"
	"errors"
	"net/http"

	issuestore "github.com/dalemusser/civictrack/internal/app/store/issues"
	votestore "github.com/dalemusser/civictrack/internal/app/store/votes"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/authz"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Transactor runs fn atomically where the server allows it.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Handler serves /api/upvotes. The vote row and the issue's
// upvotes_count change together inside one transaction.
type Handler struct {
	DB  *mongo.Database
	Tx  Transactor
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, tx Transactor, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Tx: tx, Log: logger}
}

type upvoteState struct {
	HasUpvoted   bool  `json:"has_upvoted"`
	UpvotesCount int64 `json:"upvotes_count"`
}

var errNotUpvoted = apierr.Validation("issue_id", "You have not upvoted this issue")

// target resolves the signed-in user and the {issue_id} path parameter.
func (h *Handler) target(ctx context.Context, r *http.Request) (primitive.ObjectID, primitive.ObjectID, error) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, apierr.Unauthorized("Authentication required")
	}
	issueID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "issue_id"))
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, apierr.Validation("issue_id", "issue_id must be a valid id")
	}
	if _, err := issuestore.New(h.DB).GetByID(ctx, issueID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, primitive.NilObjectID, apierr.NotFound("Issue not found")
		}
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return uid, issueID, nil
}

// HandleUpvote handles POST /api/upvotes/{issue_id}.
func (h *Handler) HandleUpvote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	uid, issueID, err := h.target(ctx, r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var count int64
	err = h.Tx.Run(ctx, func(ctx context.Context) error {
		if _, err := votestore.New(h.DB).Create(ctx, uid, issueID); err != nil {
			return err
		}
		count, err = issuestore.New(h.DB).AddUpvotes(ctx, issueID, 1)
		return err
	})
	if errors.Is(err, votestore.ErrDuplicateVote) {
		respond.Error(w, r, h.Log, apierr.Conflict("issue_id", err.Error()))
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusCreated, upvoteState{HasUpvoted: true, UpvotesCount: count}, "Issue upvoted successfully")
}

// HandleRemove handles DELETE /api/upvotes/{issue_id}.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	uid, issueID, err := h.target(ctx, r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var count int64
	err = h.Tx.Run(ctx, func(ctx context.Context) error {
		n, err := votestore.New(h.DB).Delete(ctx, uid, issueID)
		if err != nil {
			return err
		}
		if n == 0 {
			return errNotUpvoted
		}
		count, err = issuestore.New(h.DB).AddUpvotes(ctx, issueID, -1)
		return err
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusOK, upvoteState{HasUpvoted: false, UpvotesCount: count}, "Upvote removed successfully")
}

// ServeCheck handles GET /api/upvotes/{issue_id}/check.
func (h *Handler) ServeCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	uid, issueID, err := h.target(ctx, r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	has, err := votestore.New(h.DB).Exists(ctx, uid, issueID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	count, err := votestore.New(h.DB).CountByIssue(ctx, issueID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, http.StatusOK, upvoteState{HasUpvoted: has, UpvotesCount: count}, "")
}
