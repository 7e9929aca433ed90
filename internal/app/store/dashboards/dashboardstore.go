package dashboardstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrBudgetExceeded is returned by Apply when the stored budget would end
// up with budget_utilized above budget_allocated.
var ErrBudgetExceeded = errors.New("budget_utilized cannot exceed budget_allocated")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("mla_dashboards")}
}

// Update holds the optional editable dashboard fields.
type Update struct {
	Priorities      *[]string
	Announcements   *[]string
	BudgetAllocated *float64
	BudgetUtilized  *float64
}

// GetOrCreate returns the dashboard for constituencyCode, creating an empty
// one on first access.
func (s *Store) GetOrCreate(ctx context.Context, constituencyCode string, mlaID primitive.ObjectID) (*models.MLADashboard, error) {
	onInsert := bson.M{"mla_id": mlaID}
	onInsert["priorities"] = []string{}
	onInsert["announcements"] = []string{}
	onInsert["budget_allocated"] = 0.0
	onInsert["budget_utilized"] = 0.0
	onInsert["updated_at"] = time.Now().UTC()

	var out models.MLADashboard
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"constituency_id": constituencyCode},
		bson.M{"$setOnInsert": onInsert},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Apply writes upd to the dashboard for constituencyCode, creating it if
// needed. When only one budget figure is given, the write matches only if it
// holds against the other stored figure, so concurrent edits cannot leave
// budget_utilized above budget_allocated.
func (s *Store) Apply(ctx context.Context, constituencyCode string, mlaID primitive.ObjectID, upd Update) (*models.MLADashboard, error) {
	filter := bson.M{"constituency_id": constituencyCode}
	switch {
	case upd.BudgetAllocated != nil && upd.BudgetUtilized != nil:
		if *upd.BudgetUtilized > *upd.BudgetAllocated {
			return nil, ErrBudgetExceeded
		}
	case upd.BudgetAllocated != nil:
		filter["budget_utilized"] = bson.M{"$lte": *upd.BudgetAllocated}
	case upd.BudgetUtilized != nil:
		filter["budget_allocated"] = bson.M{"$gte": *upd.BudgetUtilized}
	}
	guarded := len(filter) > 1
	if guarded {
		// A guarded write never upserts, so the document must exist first.
		if _, err := s.GetOrCreate(ctx, constituencyCode, mlaID); err != nil {
			return nil, err
		}
	}

	set := bson.M{"updated_at": time.Now().UTC(), "mla_id": mlaID}
	onInsert := bson.M{}
	if upd.Priorities != nil {
		set["priorities"] = *upd.Priorities
	} else {
		onInsert["priorities"] = []string{}
	}
	if upd.Announcements != nil {
		set["announcements"] = *upd.Announcements
	} else {
		onInsert["announcements"] = []string{}
	}
	if upd.BudgetAllocated != nil {
		set["budget_allocated"] = *upd.BudgetAllocated
	} else {
		onInsert["budget_allocated"] = 0.0
	}
	if upd.BudgetUtilized != nil {
		set["budget_utilized"] = *upd.BudgetUtilized
	} else {
		onInsert["budget_utilized"] = 0.0
	}

	update := bson.M{"$set": set}
	if len(onInsert) > 0 && !guarded {
		update["$setOnInsert"] = onInsert
	}

	var out models.MLADashboard
	err := s.c.FindOneAndUpdate(ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetUpsert(!guarded).SetReturnDocument(options.After),
	).Decode(&out)
	if guarded && errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBudgetExceeded
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
