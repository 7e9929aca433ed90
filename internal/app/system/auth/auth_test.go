package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/civictrack/internal/app/system/authutil"
	"go.uber.org/zap"
)

type fakeFetcher map[string]*User

func (f fakeFetcher) FetchByTokenHash(_ context.Context, hash string) *User {
	return f[hash]
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer   abc  ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(req); got != tt.want {
				t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestLoadBearerUser(t *testing.T) {
	raw, hash, err := authutil.NewToken()
	if err != nil {
		t.Fatal(err)
	}
	m := NewManager(fakeFetcher{hash: {ID: "u1", Role: "citizen"}}, zap.NewNop())

	var got *User
	h := m.LoadBearerUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got == nil || got.ID != "u1" {
		t.Fatalf("expected user u1 in context, got %+v", got)
	}

	got = nil
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != nil {
		t.Errorf("expected no user for unknown token, got %+v", got)
	}
}

func TestRequireSignedIn(t *testing.T) {
	m := NewManager(nil, zap.NewNop())
	h := m.RequireSignedIn(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/issues", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error != "AuthError" {
		t.Errorf("body = %+v", body)
	}

	rec = httptest.NewRecorder()
	req := WithUser(httptest.NewRequest("POST", "/api/issues", nil), &User{ID: "u1", Role: "citizen"})
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("signed in: status = %d, want 204", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	m := NewManager(nil, zap.NewNop())
	h := m.RequireRole("admin", "MLA")(http.HandlerFunc(okHandler))

	tests := []struct {
		name string
		user *User
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"citizen", &User{ID: "1", Role: "citizen"}, http.StatusForbidden},
		{"mla", &User{ID: "2", Role: "mla"}, http.StatusNoContent},
		{"admin", &User{ID: "3", Role: "Admin"}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/constituencies", nil)
			if tt.user != nil {
				req = WithUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
