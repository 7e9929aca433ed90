package notificationstore_test

import (
	"testing"

	notificationstore "github.com/dalemusser/civictrack/internal/app/store/notifications"
	"github.com/dalemusser/civictrack/internal/app/system/paging"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/dalemusser/civictrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_ReadFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	first, _ := store.Create(ctx, user, models.NotifyIssueStatus, "one", nil)
	store.Create(ctx, user, models.NotifyIssueComment, "two", nil)
	store.Create(ctx, primitive.NewObjectID(), models.NotifyMeeting, "other", nil)

	page := paging.Params{Page: 1, Limit: 10}
	list, total, err := store.ListForUser(ctx, user, false, page)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if total != 2 || list[0].Message != "two" {
		t.Errorf("expected newest first for 2 notifications, got %d: %+v", total, list)
	}

	if n, _ := store.MarkRead(ctx, first.ID, primitive.NewObjectID()); n != 0 {
		t.Error("marking another user's notification must not match")
	}
	if n, _ := store.MarkRead(ctx, first.ID, user); n != 1 {
		t.Errorf("MarkRead matched %d, want 1", n)
	}

	_, unread, _ := store.ListForUser(ctx, user, true, page)
	if unread != 1 {
		t.Errorf("unread = %d, want 1", unread)
	}

	if n, _ := store.MarkAllRead(ctx, user); n != 1 {
		t.Errorf("MarkAllRead modified %d, want 1", n)
	}
	_, unread, _ = store.ListForUser(ctx, user, true, page)
	if unread != 0 {
		t.Errorf("unread after MarkAllRead = %d, want 0", unread)
	}
}
