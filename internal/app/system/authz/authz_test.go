package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/dalemusser/civictrack/internal/app/system/authz"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func requestAs(id primitive.ObjectID, role string) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	return auth.WithUser(req, &auth.User{ID: id.Hex(), Name: "Test", Role: role})
}

func TestUserCtx_NoUser(t *testing.T) {
	role, _, id, ok := authz.UserCtx(httptest.NewRequest("GET", "/test", nil))
	if ok || role != "visitor" || id != primitive.NilObjectID {
		t.Errorf("got role=%q id=%v ok=%v, want visitor/nil/false", role, id, ok)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := auth.WithUser(httptest.NewRequest("GET", "/test", nil), &auth.User{ID: "nope", Role: "admin"})
	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected malformed user id to fail closed")
	}
	if authz.IsAdmin(req) {
		t.Error("malformed id must not be treated as admin")
	}
}

func TestCanManageConstituency(t *testing.T) {
	mla := primitive.NewObjectID()
	c := &models.Constituency{ID: primitive.NewObjectID(), MLAID: mla}

	tests := []struct {
		name string
		req  *http.Request
		want bool
	}{
		{"admin", requestAs(primitive.NewObjectID(), models.RoleAdmin), true},
		{"own mla", requestAs(mla, models.RoleMLA), true},
		{"other mla", requestAs(primitive.NewObjectID(), models.RoleMLA), false},
		{"citizen", requestAs(mla, models.RoleCitizen), false},
		{"anonymous", httptest.NewRequest("GET", "/test", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authz.CanManageConstituency(tt.req, c); got != tt.want {
				t.Errorf("CanManageConstituency = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOwnerOrAdmin(t *testing.T) {
	owner := primitive.NewObjectID()
	if !authz.IsOwnerOrAdmin(requestAs(owner, models.RoleCitizen), owner) {
		t.Error("owner should pass")
	}
	if authz.IsOwnerOrAdmin(requestAs(primitive.NewObjectID(), models.RoleCitizen), owner) {
		t.Error("non-owner citizen should fail")
	}
	if !authz.IsOwnerOrAdmin(requestAs(primitive.NewObjectID(), models.RoleAdmin), owner) {
		t.Error("admin should pass")
	}
}

func TestHasAnyRole(t *testing.T) {
	req := requestAs(primitive.NewObjectID(), "MLA")
	if !authz.HasAnyRole(req, "admin", " mla ") {
		t.Error("expected mla to match")
	}
	if authz.HasAnyRole(req, "admin") {
		t.Error("expected mla not to match admin")
	}
	if role, ok := authz.Role(req); !ok || role != "mla" {
		t.Errorf("Role() = %q, %v", role, ok)
	}
}
