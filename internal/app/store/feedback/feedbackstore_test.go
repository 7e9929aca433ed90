package feedbackstore_test

import (
	"errors"
	"testing"

	feedbackstore "github.com/dalemusser/civictrack/internal/app/store/feedback"
	"github.com/dalemusser/civictrack/internal/app/system/indexes"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/dalemusser/civictrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_OnePerUserPerIssue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := feedbackstore.New(db)

	f := models.Feedback{IssueID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Feedback: "Fixed quickly", Rating: 5}
	if _, err := store.Create(ctx, f); err != nil {
		t.Fatalf("first feedback failed: %v", err)
	}
	f.Feedback = "Changed my mind"
	f.Rating = 2
	if _, err := store.Create(ctx, f); !errors.Is(err, feedbackstore.ErrDuplicateFeedback) {
		t.Fatalf("second feedback: expected ErrDuplicateFeedback, got %v", err)
	}

	other := f
	other.UserID = primitive.NewObjectID()
	if _, err := store.Create(ctx, other); err != nil {
		t.Errorf("another user's feedback should succeed, got %v", err)
	}

	list, err := store.ListByIssue(ctx, f.IssueID)
	if err != nil {
		t.Fatalf("ListByIssue failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 feedback entries, got %d", len(list))
	}
}
