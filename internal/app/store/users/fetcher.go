package userstore

import (
	"context"
	"time"

	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
// Role changes and disabled accounts take effect on the next request.
type Fetcher struct {
	users  *mongo.Collection
	tokens *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{
		users:  db.Collection("users"),
		tokens: db.Collection("auth_tokens"),
	}
}

// FetchByTokenHash resolves an unexpired token to its active user and
// returns nil otherwise. It also bumps the token's last_used_at.
func (f *Fetcher) FetchByTokenHash(ctx context.Context, tokenHash string) *auth.User {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	now := time.Now().UTC()
	var tok models.AuthToken
	err := f.tokens.FindOneAndUpdate(ctx,
		bson.M{"token_hash": tokenHash, "expires_at": bson.M{"$gt": now}},
		bson.M{"$set": bson.M{"last_used_at": now}},
	).Decode(&tok)
	if err != nil {
		return nil
	}

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":             1,
		"full_name":       1,
		"email":           1,
		"role":            1,
		"status":          1,
		"constituency_id": 1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": tok.UserID}, proj).Decode(&u); err != nil {
		return nil
	}
	if u.Status == models.StatusDisabled {
		return nil
	}

	return &auth.User{
		ID:             u.ID.Hex(),
		Name:           u.FullName,
		Email:          u.Email,
		Role:           u.Role,
		ConstituencyID: u.ConstituencyID,
		TokenHash:      tokenHash,
	}
}
