package dashboardstore_test

import (
	"errors"
	"testing"

	dashboardstore "github.com/dalemusser/civictrack/internal/app/store/dashboards"
	"github.com/dalemusser/civictrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_GetOrCreate_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := dashboardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mla := primitive.NewObjectID()
	a, err := store.GetOrCreate(ctx, "C-1", mla)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	b, err := store.GetOrCreate(ctx, "C-1", mla)
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if a.ID != b.ID {
		t.Error("expected the same dashboard on repeated access")
	}
	if a.Priorities == nil || len(a.Priorities) != 0 {
		t.Errorf("expected empty priorities, got %v", a.Priorities)
	}
}

func TestStore_Apply_Partial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := dashboardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mla := primitive.NewObjectID()
	alloc := 1000.0
	prio := []string{"roads"}
	got, err := store.Apply(ctx, "C-1", mla, dashboardstore.Update{BudgetAllocated: &alloc, Priorities: &prio})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got.BudgetAllocated != 1000 || len(got.Priorities) != 1 || got.Announcements == nil {
		t.Errorf("unexpected dashboard: %+v", got)
	}

	used := 250.0
	got, err = store.Apply(ctx, "C-1", mla, dashboardstore.Update{BudgetUtilized: &used})
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if got.BudgetAllocated != 1000 || got.BudgetUtilized != 250 || got.Priorities[0] != "roads" {
		t.Errorf("partial apply changed other fields: %+v", got)
	}
}

func TestStore_Apply_BudgetGuard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := dashboardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mla := primitive.NewObjectID()
	alloc, used := 1000.0, 800.0
	if _, err := store.Apply(ctx, "C-1", mla, dashboardstore.Update{BudgetAllocated: &alloc, BudgetUtilized: &used}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// A later allocation cut that was checked against a stale read.
	cut := 500.0
	if _, err := store.Apply(ctx, "C-1", mla, dashboardstore.Update{BudgetAllocated: &cut}); !errors.Is(err, dashboardstore.ErrBudgetExceeded) {
		t.Fatalf("cut below utilized: err = %v, want ErrBudgetExceeded", err)
	}
	over := 1200.0
	if _, err := store.Apply(ctx, "C-1", mla, dashboardstore.Update{BudgetUtilized: &over}); !errors.Is(err, dashboardstore.ErrBudgetExceeded) {
		t.Fatalf("utilized above allocated: err = %v, want ErrBudgetExceeded", err)
	}
	if _, err := store.Apply(ctx, "C-1", mla, dashboardstore.Update{BudgetAllocated: &cut, BudgetUtilized: &over}); !errors.Is(err, dashboardstore.ErrBudgetExceeded) {
		t.Fatalf("both figures: err = %v, want ErrBudgetExceeded", err)
	}

	got, err := store.GetOrCreate(ctx, "C-1", mla)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if got.BudgetAllocated != 1000 || got.BudgetUtilized != 800 {
		t.Errorf("rejected writes changed the budget: %+v", got)
	}

	fresh := 300.0
	if _, err := store.Apply(ctx, "C-2", mla, dashboardstore.Update{BudgetUtilized: &fresh}); !errors.Is(err, dashboardstore.ErrBudgetExceeded) {
		t.Errorf("utilized on a new dashboard: err = %v, want ErrBudgetExceeded", err)
	}
}
