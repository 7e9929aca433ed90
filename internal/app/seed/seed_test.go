package seed_test

import (
	"testing"

	"github.com/dalemusser/civictrack/internal/app/seed"
	"github.com/dalemusser/civictrack/internal/app/system/txn"
	"github.com/dalemusser/civictrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestRun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := zap.NewNop()
	opts := seed.Options{Constituencies: 2, Panchayats: 3, Wards: 2, Issues: 10, Seed: 7}

	sum, err := seed.Run(ctx, db, txn.New(db.Client(), logger), opts, logger)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := seed.Summary{Admins: 1, MLAs: 2, Citizens: 3, Constituencies: 2, Panchayats: 6, Wards: 12, Issues: 10}
	if sum.Admins != want.Admins || sum.MLAs != want.MLAs || sum.Citizens != want.Citizens ||
		sum.Constituencies != want.Constituencies || sum.Panchayats != want.Panchayats ||
		sum.Wards != want.Wards || sum.Issues != want.Issues {
		t.Errorf("summary = %+v, want %+v", sum, want)
	}
	if len(sum.Skipped) != 0 {
		t.Errorf("skipped = %v on an empty database", sum.Skipped)
	}

	counts := map[string]int64{"users": 6, "constituencies": 2, "panchayats": 6, "issues": 10, "votes": int64(sum.Upvotes)}
	for coll, n := range counts {
		got, err := db.Collection(coll).CountDocuments(ctx, bson.M{})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if got != n {
			t.Errorf("%s: got %d documents, want %d", coll, got, n)
		}
	}

	// upvotes_count on issues must agree with the votes collection.
	cur, err := db.Collection("issues").Aggregate(ctx, []bson.M{
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$upvotes_count"}}},
	})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].Total != int64(sum.Upvotes) {
		t.Errorf("upvotes_count total = %v, want %d", rows, sum.Upvotes)
	}

	t.Run("rerun skips existing", func(t *testing.T) {
		again, err := seed.Run(ctx, db, txn.New(db.Client(), logger), opts, logger)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if again.Admins != 0 || again.MLAs != 0 || again.Constituencies != 0 || again.Issues != 0 {
			t.Errorf("rerun created data: %+v", again)
		}
		if len(again.Skipped) != 2 {
			t.Errorf("skipped = %v, want both constituencies", again.Skipped)
		}
	})

	t.Run("drop starts over", func(t *testing.T) {
		opts := opts
		opts.Drop = true
		fresh, err := seed.Run(ctx, db, txn.New(db.Client(), logger), opts, logger)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if fresh.Constituencies != 2 || fresh.Issues != 10 {
			t.Errorf("after drop: %+v", fresh)
		}
	})
}
