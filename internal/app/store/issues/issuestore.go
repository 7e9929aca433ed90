package issuestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/civictrack/internal/app/system/paging"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrStatusChanged is returned by Transition when the issue's status no
// longer matches the expected current status.
var ErrStatusChanged = errors.New("issue status was changed by another request")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("issues")}
}

// NewTicket returns a short human-facing ticket code such as ISS-1A2B3C4D.
func NewTicket() string {
	return "ISS-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Filter narrows List. Empty fields are ignored.
type Filter struct {
	ConstituencyID string
	PanchayatID    string
	WardID         string
	Status         string
	Category       string
	ReportedBy     primitive.ObjectID
}

func (f Filter) bson() bson.M {
	m := bson.M{}
	if f.ConstituencyID != "" {
		m["constituency_id"] = f.ConstituencyID
	}
	if f.PanchayatID != "" {
		m["panchayat_id"] = f.PanchayatID
	}
	if f.WardID != "" {
		m["ward_id"] = f.WardID
	}
	if f.Status != "" {
		m["status"] = f.Status
	}
	if f.Category != "" {
		m["category"] = f.Category
	}
	if f.ReportedBy != primitive.NilObjectID {
		m["reported_by"] = f.ReportedBy
	}
	return m
}

// Create inserts a new pending issue.
func (s *Store) Create(ctx context.Context, is models.Issue) (models.Issue, error) {
	is.ID = primitive.NewObjectID()
	is.Ticket = NewTicket()
	is.Status = models.IssuePending
	is.UpvotesCount = 0
	now := time.Now().UTC()
	is.CreatedAt = now
	is.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, is); err != nil {
		return models.Issue{}, err
	}
	return is, nil
}

// GetByID loads an issue by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var is models.Issue
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&is); err != nil {
		return nil, err
	}
	return &is, nil
}

// List returns one page of issues matching f, newest first, plus the total match count.
func (s *Store) List(ctx context.Context, f Filter, page paging.Params) ([]models.Issue, int64, error) {
	filter := f.bson()
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, page.Apply(find))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []models.Issue{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Transition moves an issue from one status to another. The write only
// applies while the stored status still equals from.
func (s *Store) Transition(ctx context.Context, id primitive.ObjectID, from, to, note string) (*models.Issue, error) {
	now := time.Now().UTC()
	set := bson.M{"status": to, "updated_at": now}
	if note != "" {
		set["status_note"] = note
	}
	update := bson.M{"$set": set}
	if to == models.IssueResolved {
		set["resolved_at"] = now
	} else {
		update["$unset"] = bson.M{"resolved_at": ""}
	}

	var out models.Issue
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err == nil {
		return &out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if _, getErr := s.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStatusChanged
}

// AddUpvotes adjusts upvotes_count by delta and returns the new count.
// A decrement never takes the count below zero.
func (s *Store) AddUpvotes(ctx context.Context, id primitive.ObjectID, delta int64) (int64, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["upvotes_count"] = bson.M{"$gte": -delta}
	}
	var out models.Issue
	err := s.c.FindOneAndUpdate(ctx,
		filter,
		bson.M{"$inc": bson.M{"upvotes_count": delta}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"upvotes_count": 1}),
	).Decode(&out)
	if err != nil {
		return 0, err
	}
	return out.UpvotesCount, nil
}

// Delete removes an issue. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Stats aggregates the issues of one constituency.
func (s *Store) Stats(ctx context.Context, constituencyCode string) (models.IssueStats, error) {
	group := func(field string) bson.A {
		return bson.A{bson.M{"$group": bson.M{"_id": "$" + field, "n": bson.M{"$sum": 1}}}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"constituency_id": constituencyCode}}},
		{{Key: "$facet", Value: bson.M{
			"by_status":   group("status"),
			"by_category": group("category"),
			"totals": bson.A{bson.M{"$group": bson.M{
				"_id":     nil,
				"total":   bson.M{"$sum": 1},
				"upvotes": bson.M{"$sum": "$upvotes_count"},
			}}},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return models.IssueStats{}, err
	}
	defer cur.Close(ctx)

	type bucket struct {
		Key string `bson:"_id"`
		N   int64  `bson:"n"`
	}
	var rows []struct {
		ByStatus   []bucket `bson:"by_status"`
		ByCategory []bucket `bson:"by_category"`
		Totals     []struct {
			Total   int64 `bson:"total"`
			Upvotes int64 `bson:"upvotes"`
		} `bson:"totals"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return models.IssueStats{}, err
	}

	stats := models.IssueStats{
		ConstituencyID: constituencyCode,
		ByStatus:       map[string]int64{},
		ByCategory:     map[string]int64{},
	}
	for _, st := range []string{models.IssuePending, models.IssueInProgress, models.IssueResolved, models.IssueRejected} {
		stats.ByStatus[st] = 0
	}
	if len(rows) == 0 {
		return stats, nil
	}
	for _, b := range rows[0].ByStatus {
		stats.ByStatus[b.Key] = b.N
	}
	for _, b := range rows[0].ByCategory {
		stats.ByCategory[b.Key] = b.N
	}
	if len(rows[0].Totals) > 0 {
		stats.Total = rows[0].Totals[0].Total
		stats.TotalUpvotes = rows[0].Totals[0].Upvotes
	}
	if stats.Total > 0 {
		stats.ResolutionRate = float64(stats.ByStatus[models.IssueResolved]) / float64(stats.Total)
	}
	return stats, nil
}
