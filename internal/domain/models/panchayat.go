// internal/domain/models/panchayat.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ward is the smallest administrative unit. It has no lifecycle of its
// own and lives only inside a Panchayat's ward list.
type Ward struct {
	WardID   string `bson:"ward_id" json:"ward_id"`
	WardName string `bson:"ward_name" json:"ward_name"`
}

// Panchayat groups wards inside a constituency.
type Panchayat struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	NameCI         string             `bson:"name_ci" json:"-"`
	PanchayatID    string             `bson:"panchayat_id" json:"panchayat_id"`
	ConstituencyID string             `bson:"constituency_id" json:"constituency_id"`
	WardList       []Ward             `bson:"ward_list" json:"ward_list"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasWard reports whether wardID is present in the ward list.
func (p Panchayat) HasWard(wardID string) bool {
	for _, w := range p.WardList {
		if w.WardID == wardID {
			return true
		}
	}
	return false
}
