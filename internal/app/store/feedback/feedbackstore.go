package feedbackstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/civictrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateFeedback is returned when the user already left feedback on the issue.
var ErrDuplicateFeedback = errors.New("you have already submitted feedback for this issue")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("feedback")}
}

// Create inserts f. The unique (issue_id, user_id) index rejects a second
// submission by the same user.
func (s *Store) Create(ctx context.Context, f models.Feedback) (models.Feedback, error) {
	f.ID = primitive.NewObjectID()
	f.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Feedback{}, ErrDuplicateFeedback
		}
		return models.Feedback{}, err
	}
	return f, nil
}

// ListByIssue returns an issue's feedback, newest first.
func (s *Store) ListByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"issue_id": issueID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Feedback{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByIssue removes every feedback entry for issueID.
func (s *Store) DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"issue_id": issueID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
