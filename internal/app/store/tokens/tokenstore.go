package tokenstore

import (
	"context"
	"time"

	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store persists hashed bearer tokens.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("auth_tokens")}
}

// Issue stores a token hash for userID that expires after ttl.
func (s *Store) Issue(ctx context.Context, userID primitive.ObjectID, tokenHash string, ttl time.Duration, ip, userAgent string) (models.AuthToken, error) {
	now := time.Now().UTC()
	tok := models.AuthToken{
		ID:         primitive.NewObjectID(),
		TokenHash:  tokenHash,
		UserID:     userID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		LastUsedAt: now,
		IP:         ip,
		UserAgent:  userAgent,
	}
	if _, err := s.c.InsertOne(ctx, tok); err != nil {
		return models.AuthToken{}, err
	}
	return tok, nil
}

// Revoke deletes the token with the given hash.
func (s *Store) Revoke(ctx context.Context, tokenHash string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"token_hash": tokenHash})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// RevokeAllForUser deletes every token belonging to userID.
func (s *Store) RevokeAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteExpired removes tokens that expired before now.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
