// internal/domain/models/token.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthToken is a bearer token issued at login. Only the SHA-256 of the
// token is stored; the raw value is returned to the client once.
type AuthToken struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	TokenHash  string             `bson:"token_hash"`
	UserID     primitive.ObjectID `bson:"user_id"`
	CreatedAt  time.Time          `bson:"created_at"`
	ExpiresAt  time.Time          `bson:"expires_at"`
	LastUsedAt time.Time          `bson:"last_used_at"`
	IP         string             `bson:"ip,omitempty"`
	UserAgent  string             `bson:"user_agent,omitempty"`
}
