// internal/domain/models/feedback.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is a user's rating of how an issue was handled.
// One feedback per (issue_id, user_id).
type Feedback struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	IssueID   primitive.ObjectID `bson:"issue_id" json:"issue_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Feedback  string             `bson:"feedback" json:"feedback"`
	Rating    int                `bson:"rating" json:"rating"` // 1..5
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
