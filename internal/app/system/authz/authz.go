// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// CanManageConstituency reports whether the current user may act on c:
// admins always, MLAs only for the constituency they represent.
func CanManageConstituency(r *http.Request, c *models.Constituency) bool {
	role, _, uid, ok := UserCtx(r)
	if !ok || c == nil {
		return false
	}
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleMLA:
		return c.MLAID == uid
	}
	return false
}

// IsOwnerOrAdmin reports whether the current user is owner or an admin.
func IsOwnerOrAdmin(r *http.Request, owner primitive.ObjectID) bool {
	role, _, uid, ok := UserCtx(r)
	if !ok {
		return false
	}
	return role == models.RoleAdmin || uid == owner
}

// ConstituencyGuard returns a check that rejects changes under any
// constituency the current user may not manage.
func ConstituencyGuard(r *http.Request) func(c *models.Constituency) error {
	return func(c *models.Constituency) error {
		if CanManageConstituency(r, c) {
			return nil
		}
		return apierr.Forbidden("You can only manage panchayats in your own constituency")
	}
}
