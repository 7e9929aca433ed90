// internal/domain/models/issue.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Issue categories.
const (
	CategoryRoad        = "road"
	CategoryWater       = "water"
	CategorySanitation  = "sanitation"
	CategoryElectricity = "electricity"
	CategoryHealth      = "health"
	CategoryEducation   = "education"
	CategoryOther       = "other"
)

// Issue statuses.
const (
	IssuePending    = "pending"
	IssueInProgress = "in_progress"
	IssueResolved   = "resolved"
	IssueRejected   = "rejected"
)

// Categories lists every accepted issue category.
var Categories = []string{
	CategoryRoad, CategoryWater, CategorySanitation, CategoryElectricity,
	CategoryHealth, CategoryEducation, CategoryOther,
}

// Issue is a civic problem filed by a citizen against a ward.
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Ticket      string             `bson:"ticket" json:"ticket"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Status      string             `bson:"status" json:"status"`

	ConstituencyID string `bson:"constituency_id" json:"constituency_id"`
	PanchayatID    string `bson:"panchayat_id" json:"panchayat_id"`
	WardID         string `bson:"ward_id" json:"ward_id"`

	ReportedBy   primitive.ObjectID `bson:"reported_by" json:"reported_by"`
	UpvotesCount int64              `bson:"upvotes_count" json:"upvotes_count"`

	// StatusNote is the last note left by the MLA/admin who changed Status.
	StatusNote string     `bson:"status_note,omitempty" json:"status_note,omitempty"`
	ResolvedAt *time.Time `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
