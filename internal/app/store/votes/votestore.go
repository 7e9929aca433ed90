package votestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/civictrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateVote is returned when the user already upvoted the issue.
// The unique (user_id, issue_id) index is the authority for this.
var ErrDuplicateVote = errors.New("you have already upvoted this issue")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("votes")}
}

// Create records an upvote by userID on issueID.
func (s *Store) Create(ctx context.Context, userID, issueID primitive.ObjectID) (models.Vote, error) {
	v := models.Vote{
		ID:       primitive.NewObjectID(),
		UserID:   userID,
		IssueID:  issueID,
		VoteType: models.VoteTypeUpvote,
		VotedAt:  time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Vote{}, ErrDuplicateVote
		}
		return models.Vote{}, err
	}
	return v, nil
}

// Delete removes userID's vote on issueID. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, userID, issueID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "issue_id": issueID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Exists reports whether userID has upvoted issueID.
func (s *Store) Exists(ctx context.Context, userID, issueID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "issue_id": issueID}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// CountByIssue counts votes on issueID.
func (s *Store) CountByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"issue_id": issueID})
}

// DeleteByIssue removes every vote on issueID.
func (s *Store) DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"issue_id": issueID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
