package tokenstore_test

import (
	"testing"
	"time"

	tokenstore "github.com/dalemusser/civictrack/internal/app/store/tokens"
	"github.com/dalemusser/civictrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_IssueAndRevoke(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tokenstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	tok, err := store.Issue(ctx, uid, "hash-1", time.Hour, "10.0.0.1", "test")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if !tok.ExpiresAt.After(tok.CreatedAt) {
		t.Error("expected ExpiresAt after CreatedAt")
	}

	n, err := store.Revoke(ctx, "hash-1")
	if err != nil || n != 1 {
		t.Fatalf("Revoke = %d, %v; want 1, nil", n, err)
	}
	n, _ = store.Revoke(ctx, "hash-1")
	if n != 0 {
		t.Errorf("second Revoke = %d, want 0", n)
	}
}

func TestStore_DeleteExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tokenstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	if _, err := store.Issue(ctx, uid, "live", time.Hour, "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Issue(ctx, uid, "dead", time.Millisecond, "", ""); err != nil {
		t.Fatal(err)
	}

	n, err := store.DeleteExpired(ctx, time.Now().UTC().Add(time.Second))
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}
	left, _ := db.Collection("auth_tokens").CountDocuments(ctx, bson.M{})
	if left != 1 {
		t.Errorf("remaining %d, want 1", left)
	}
}

func TestStore_RevokeAllForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tokenstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	other := primitive.NewObjectID()
	store.Issue(ctx, uid, "a", time.Hour, "", "")
	store.Issue(ctx, uid, "b", time.Hour, "", "")
	store.Issue(ctx, other, "c", time.Hour, "", "")

	n, err := store.RevokeAllForUser(ctx, uid)
	if err != nil || n != 2 {
		t.Errorf("RevokeAllForUser = %d, %v; want 2, nil", n, err)
	}
}
