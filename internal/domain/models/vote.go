// internal/domain/models/vote.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VoteTypeUpvote is the only vote type.
const VoteTypeUpvote = "upvote"

// Vote records one user's upvote on one issue. (user_id, issue_id) is unique.
type Vote struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	IssueID  primitive.ObjectID `bson:"issue_id" json:"issue_id"`
	VoteType string             `bson:"vote_type" json:"vote_type"`
	VotedAt  time.Time          `bson:"voted_at" json:"voted_at"`
}
