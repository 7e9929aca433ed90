// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user may hold.
const (
	RoleCitizen = "citizen"
	RoleMLA     = "mla"
	RoleAdmin   = "admin"
)

// Account statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Roles lists every assignable role.
var Roles = []string{RoleCitizen, RoleMLA, RoleAdmin}

// User is a registered account: citizens file issues, MLAs manage their
// constituency, admins manage everything.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName     string             `bson:"full_name" json:"name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         string             `bson:"role" json:"role"` // citizen | mla | admin
	Status       string             `bson:"status" json:"status"`

	// ConstituencyID is the business constituency_id the user lives in (optional).
	ConstituencyID string `bson:"constituency_id,omitempty" json:"constituency_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsRole reports whether the user holds one of the given roles.
func (u User) IsRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
