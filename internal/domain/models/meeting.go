// internal/domain/models/meeting.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meeting is a scheduled meeting between an MLA and departments.
type Meeting struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name           string               `bson:"name" json:"name"`
	ConstituencyID string               `bson:"constituency_id" json:"constituency_id"`
	Departments    []primitive.ObjectID `bson:"departments" json:"departments"`
	Date           string               `bson:"date" json:"date"` // YYYY-MM-DD
	Time           string               `bson:"time" json:"time"` // HH:MM, 24h
	Agenda         string               `bson:"agenda,omitempty" json:"agenda,omitempty"`
	CreatedBy      primitive.ObjectID   `bson:"created_by" json:"created_by"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
}
