package votestore_test

import (
	"errors"
	"testing"

	votestore "github.com/dalemusser/civictrack/internal/app/store/votes"
	"github.com/dalemusser/civictrack/internal/app/system/indexes"
	"github.com/dalemusser/civictrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_UpvoteUniqueness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := votestore.New(db)

	user, issue := primitive.NewObjectID(), primitive.NewObjectID()

	if _, err := store.Create(ctx, user, issue); err != nil {
		t.Fatalf("first upvote failed: %v", err)
	}
	if _, err := store.Create(ctx, user, issue); !errors.Is(err, votestore.ErrDuplicateVote) {
		t.Fatalf("second upvote: expected ErrDuplicateVote, got %v", err)
	}

	n, err := store.Delete(ctx, user, issue)
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	has, _ := store.Exists(ctx, user, issue)
	if has {
		t.Error("expected vote to be gone after delete")
	}

	if _, err := store.Create(ctx, user, issue); err != nil {
		t.Errorf("upvote after delete should succeed, got %v", err)
	}
}

func TestStore_CountAndDeleteByIssue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	issue := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		store.Create(ctx, primitive.NewObjectID(), issue)
	}
	store.Create(ctx, primitive.NewObjectID(), primitive.NewObjectID())

	if n, _ := store.CountByIssue(ctx, issue); n != 3 {
		t.Errorf("CountByIssue = %d, want 3", n)
	}
	if n, _ := store.DeleteByIssue(ctx, issue); n != 3 {
		t.Errorf("DeleteByIssue = %d, want 3", n)
	}
}
