package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/civictrack/internal/app/system/validators"
	"github.com/dalemusser/civictrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	// Second call should also succeed (idempotent)
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}

	for _, expected := range []string{
		"users", "constituencies", "panchayats", "issues", "votes", "feedback",
		"meetings", "auth_tokens", "comments", "departments", "notifications", "mla_dashboards",
	} {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestEnsureAll_RejectsInvalidDocuments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		name string
		coll string
		doc  bson.M
	}{
		{
			name: "panchayat without wards",
			coll: "panchayats",
			doc: bson.M{
				"name": "Empty", "panchayat_id": "P-0", "constituency_id": "C-0",
				"ward_list": bson.A{},
			},
		},
		{
			name: "feedback rating out of range",
			coll: "feedback",
			doc: bson.M{
				"issue_id": primitive.NewObjectID(), "user_id": primitive.NewObjectID(),
				"rating": 6,
			},
		},
		{
			name: "meeting time not HH:MM",
			coll: "meetings",
			doc: bson.M{
				"name": "Review", "constituency_id": "C-0", "date": "2026-01-02", "time": "9am",
			},
		},
		{
			name: "vote with unknown type",
			coll: "votes",
			doc: bson.M{
				"user_id": primitive.NewObjectID(), "issue_id": primitive.NewObjectID(),
				"vote_type": "downvote", "voted_at": time.Now(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc); err == nil {
				t.Errorf("expected %s insert to be rejected", tt.coll)
			}
		})
	}
}

func TestEnsureAll_AcceptsValidPanchayat(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	_, err := db.Collection("panchayats").InsertOne(ctx, bson.M{
		"name": "Rampur", "panchayat_id": "P-1", "constituency_id": "C-1",
		"ward_list": bson.A{bson.M{"ward_id": "W-1", "ward_name": "Ward 1"}},
	})
	if err != nil {
		t.Fatalf("valid panchayat rejected: %v", err)
	}
}
