// internal/domain/models/constituency.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constituency is the root of the administrative hierarchy. It is
// represented by one MLA.
//
// NOTE:
//   - ConstituencyID is the human-assigned business id and is globally unique.
//   - Panchayats is a denormalized back-reference; the panchayats
//     collection (keyed by constituency_id) is the source of truth.
type Constituency struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name           string               `bson:"name" json:"name"`
	NameCI         string               `bson:"name_ci" json:"-"`
	ConstituencyID string               `bson:"constituency_id" json:"constituency_id"`
	MLAID          primitive.ObjectID   `bson:"mla_id" json:"mla_id"`
	Panchayats     []primitive.ObjectID `bson:"panchayats" json:"panchayats"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
