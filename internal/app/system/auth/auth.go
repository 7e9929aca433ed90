package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/civictrack/internal/app/system/authutil"
	"github.com/dalemusser/civictrack/internal/app/system/respond"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// User is what LoadBearerUser injects into r.Context().
type User struct {
	ID             string
	Name           string
	Email          string
	Role           string
	ConstituencyID string
	TokenHash      string // hash of the bearer token that authenticated this request
}

// UserFetcher resolves a token hash to a live user. It returns nil when the
// token is unknown, expired, or belongs to a disabled account.
type UserFetcher interface {
	FetchByTokenHash(ctx context.Context, tokenHash string) *User
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*User)
	return u, ok
}

// WithUser returns r with u attached to its context. Middleware and tests
// both use it.
func WithUser(r *http.Request, u *User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Bearer-token middleware                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// Manager authenticates requests carrying `Authorization: Bearer <token>`.
type Manager struct {
	fetcher UserFetcher
	log     *zap.Logger
}

// NewManager builds a Manager over fetcher.
func NewManager(fetcher UserFetcher, logger *zap.Logger) *Manager {
	return &Manager{fetcher: fetcher, log: logger}
}

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// LoadBearerUser injects the user into context when the request carries a
// valid token. Requests without one pass through unauthenticated.
func (m *Manager) LoadBearerUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := BearerToken(r)
		if raw == "" || m.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}
		if u := m.fetcher.FetchByTokenHash(r.Context(), authutil.HashToken(raw)); u != nil {
			r = WithUser(r, u)
		} else {
			m.log.Debug("bearer token rejected", zap.String("path", r.URL.Path))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadBearerUser).
func (m *Manager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures there is a user with one of the allowed roles.
// No user is 401; a user with the wrong role is 403.
func (m *Manager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				unauthorized(w)
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				respond.JSON(w, http.StatusForbidden, respond.ErrorBody{
					Success: false,
					Message: "You do not have permission to perform this action",
					Error:   "AuthError",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="civictrack"`)
	respond.JSON(w, http.StatusUnauthorized, respond.ErrorBody{
		Success: false,
		Message: "Authentication required",
		Error:   "AuthError",
	})
}
