package notifications_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/civictrack/internal/app/features/notifications"
	notificationstore "github.com/dalemusser/civictrack/internal/app/store/notifications"
	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/dalemusser/civictrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type listBody struct {
	Data []models.Notification `json:"data"`
	Meta struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

func TestNotifications(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	logger := zap.NewNop()
	router := notifications.Routes(notifications.NewHandler(db, logger), auth.NewManager(nil, logger))

	owner := testutil.CitizenUser()
	ownerID, _ := primitive.ObjectIDFromHex(owner.ID)
	store := notificationstore.New(db)
	first, err := store.Create(ctx, ownerID, models.NotifyIssueStatus, "first", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, ownerID, models.NotifyIssueComment, "second", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, primitive.NewObjectID(), models.NotifyIssueStatus, "someone else", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	do := func(method, path string, user testutil.TestUser) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.WithUser(httptest.NewRequest(method, path, nil), user))
		return rec
	}

	t.Run("own only, newest first", func(t *testing.T) {
		rec := do("GET", "/", owner)
		testutil.AssertStatus(t, rec, http.StatusOK)
		var body listBody
		testutil.DecodeJSON(t, rec, &body)
		if body.Meta.Total != 2 || len(body.Data) != 2 || body.Data[0].Message != "second" {
			t.Errorf("got %+v", body)
		}
	})

	t.Run("someone else's notification", func(t *testing.T) {
		testutil.AssertStatus(t, do("PUT", "/"+first.ID.Hex()+"/read", testutil.CitizenUser()), http.StatusNotFound)
	})

	t.Run("mark one read", func(t *testing.T) {
		testutil.AssertStatus(t, do("PUT", "/"+first.ID.Hex()+"/read", owner), http.StatusOK)
		var body listBody
		testutil.DecodeJSON(t, do("GET", "/?unread=true", owner), &body)
		if body.Meta.Total != 1 {
			t.Errorf("unread = %d, want 1", body.Meta.Total)
		}
	})

	t.Run("mark all read", func(t *testing.T) {
		testutil.AssertStatus(t, do("PUT", "/read-all", owner), http.StatusOK)
		var body listBody
		testutil.DecodeJSON(t, do("GET", "/?unread=true", owner), &body)
		if body.Meta.Total != 0 {
			t.Errorf("unread = %d, want 0", body.Meta.Total)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		testutil.AssertStatus(t, rec, http.StatusUnauthorized)
	})
}
