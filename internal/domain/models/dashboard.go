// internal/domain/models/dashboard.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MLADashboard holds the editable part of an MLA's constituency dashboard.
// Live issue statistics are computed on read and never stored.
type MLADashboard struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ConstituencyID  string             `bson:"constituency_id" json:"constituency_id"`
	MLAID           primitive.ObjectID `bson:"mla_id" json:"mla_id"`
	Priorities      []string           `bson:"priorities" json:"priorities"`
	Announcements   []string           `bson:"announcements" json:"announcements"`
	BudgetAllocated float64            `bson:"budget_allocated" json:"budget_allocated"`
	BudgetUtilized  float64            `bson:"budget_utilized" json:"budget_utilized"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// IssueStats is the aggregate view of a constituency's issues.
type IssueStats struct {
	ConstituencyID string           `json:"constituency_id"`
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByCategory     map[string]int64 `json:"by_category"`
	TotalUpvotes   int64            `json:"total_upvotes"`
	ResolutionRate float64          `json:"resolution_rate"` // resolved / total, 0 when empty
}
