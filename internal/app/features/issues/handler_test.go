package issues_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/civictrack/internal/app/features/issues"
	"github.com/dalemusser/civictrack/internal/app/hierarchy"
	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/dalemusser/civictrack/internal/app/system/indexes"
	"github.com/dalemusser/civictrack/internal/app/system/txn"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/dalemusser/civictrack/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type world struct {
	router    chi.Router
	fx        *testutil.Fixtures
	mla       models.User
	reporter  models.User
	panchayat models.Panchayat
}

func newWorld(t *testing.T) *world {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	logger := zap.NewNop()
	tx := txn.New(db.Client(), logger)
	h := issues.NewHandler(db, hierarchy.NewForDB(db, tx, logger), tx, logger)

	fx := testutil.NewFixtures(t, db)
	mla := fx.CreateMLA(ctx, "Rep", "rep@example.com")
	fx.CreateConstituency(ctx, "North", "IS-C", mla.ID)
	p := fx.CreatePanchayat(ctx, "Lakeside", "IS-P", "IS-C")

	return &world{
		router:    issues.Routes(h, auth.NewManager(nil, logger)),
		fx:        fx,
		mla:       mla,
		reporter:  fx.CreateCitizen(ctx, "Reporter", "reporter@example.com"),
		panchayat: p,
	}
}

func (w *world) do(req *http.Request, u *testutil.TestUser) *httptest.ResponseRecorder {
	if u != nil {
		req = testutil.WithUser(req, *u)
	}
	rec := httptest.NewRecorder()
	w.router.ServeHTTP(rec, req)
	return rec
}

func ptr[T any](v T) *T { return &v }

func issueBody(wardID string) map[string]any {
	return map[string]any{
		"title":           "Broken street light",
		"description":     "The light near the school has been out for a week.",
		"category":        models.CategoryElectricity,
		"constituency_id": "IS-C",
		"panchayat_id":    "IS-P",
		"ward_id":         wardID,
	}
}

func TestCreate(t *testing.T) {
	w := newWorld(t)
	reporter := ptr(testutil.AsTestUser(w.reporter))
	ward := w.panchayat.WardList[0].WardID

	t.Run("valid issue gets a ticket", func(t *testing.T) {
		rec := w.do(testutil.NewJSONRequest(t, "POST", "/", issueBody(ward)), reporter)
		testutil.AssertStatus(t, rec, http.StatusCreated)
		var env testutil.Envelope
		testutil.DecodeJSON(t, rec, &env)
		var is models.Issue
		if err := json.Unmarshal(env.Data, &is); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(is.Ticket, "ISS-") || is.Status != models.IssuePending {
			t.Errorf("ticket = %q, status = %q", is.Ticket, is.Status)
		}
		if is.ReportedBy != w.reporter.ID {
			t.Errorf("reported_by = %s, want %s", is.ReportedBy.Hex(), w.reporter.ID.Hex())
		}
	})

	t.Run("unknown ward", func(t *testing.T) {
		rec := w.do(testutil.NewJSONRequest(t, "POST", "/", issueBody("NOPE")), reporter)
		testutil.AssertStatus(t, rec, http.StatusNotFound)
	})

	t.Run("bad category", func(t *testing.T) {
		body := issueBody(ward)
		body["category"] = "potholes"
		rec := w.do(testutil.NewJSONRequest(t, "POST", "/", body), reporter)
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("short description", func(t *testing.T) {
		body := issueBody(ward)
		body["description"] = "too short"
		rec := w.do(testutil.NewJSONRequest(t, "POST", "/", body), reporter)
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("padded title counts trimmed length", func(t *testing.T) {
		body := issueBody(ward)
		body["title"] = "   ab    "
		rec := w.do(testutil.NewJSONRequest(t, "POST", "/", body), reporter)
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
		var env testutil.Envelope
		testutil.DecodeJSON(t, rec, &env)
		if env.Field != "title" {
			t.Errorf("field = %q, want title", env.Field)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := w.do(testutil.NewJSONRequest(t, "POST", "/", issueBody(ward)), nil)
		testutil.AssertStatus(t, rec, http.StatusUnauthorized)
	})
}

func TestList_FiltersAndPaging(t *testing.T) {
	w := newWorld(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	for _, title := range []string{"One", "Two", "Three"} {
		w.fx.CreateIssue(ctx, title, w.reporter.ID, w.panchayat)
	}

	rec := w.do(httptest.NewRequest("GET", "/?constituency_id=IS-C&limit=2", nil), nil)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var body struct {
		Data []models.Issue `json:"data"`
		Meta struct {
			Total   int64 `json:"total"`
			HasNext bool  `json:"has_next"`
		} `json:"meta"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if len(body.Data) != 2 || body.Meta.Total != 3 || !body.Meta.HasNext {
		t.Errorf("got %d items, total %d, has_next %v", len(body.Data), body.Meta.Total, body.Meta.HasNext)
	}

	rec = w.do(httptest.NewRequest("GET", "/?status=resolved", nil), nil)
	testutil.DecodeJSON(t, rec, &body)
	if len(body.Data) != 0 {
		t.Errorf("resolved filter returned %d issues", len(body.Data))
	}

	rec = w.do(httptest.NewRequest("GET", "/?status=closed", nil), nil)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

func TestStatus(t *testing.T) {
	w := newWorld(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	is := w.fx.CreateIssue(ctx, "Pothole", w.reporter.ID, w.panchayat)
	path := "/" + is.ID.Hex() + "/status"

	mla := ptr(testutil.AsTestUser(w.mla))
	otherMLA := ptr(testutil.MLAUser())
	reporter := ptr(testutil.AsTestUser(w.reporter))

	steps := []struct {
		name       string
		user       *testutil.TestUser
		status     string
		wantStatus int
	}{
		{"reporter cannot change", reporter, models.IssueInProgress, http.StatusForbidden},
		{"other mla cannot change", otherMLA, models.IssueInProgress, http.StatusForbidden},
		{"skip to resolved rejected", mla, models.IssueResolved, http.StatusBadRequest},
		{"start work", mla, models.IssueInProgress, http.StatusOK},
		{"resolve", mla, models.IssueResolved, http.StatusOK},
		{"terminal", ptr(testutil.AdminUser()), models.IssuePending, http.StatusBadRequest},
	}
	for _, st := range steps {
		t.Run(st.name, func(t *testing.T) {
			rec := w.do(testutil.NewJSONRequest(t, "PUT", path, map[string]string{"status": st.status}), st.user)
			testutil.AssertStatus(t, rec, st.wantStatus)
		})
	}

	n, err := w.fx.DB().Collection("notifications").CountDocuments(ctx, bson.M{
		"user_id": w.reporter.ID,
		"type":    models.NotifyIssueStatus,
	})
	if err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if n != 2 {
		t.Errorf("reporter notifications = %d, want 2", n)
	}
}

func TestDelete_Cascades(t *testing.T) {
	w := newWorld(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	is := w.fx.CreateIssue(ctx, "Flooding", w.reporter.ID, w.panchayat)
	reporter := ptr(testutil.AsTestUser(w.reporter))

	rec := w.do(testutil.NewJSONRequest(t, "POST", "/"+is.ID.Hex()+"/comments", `{"text":"Still flooded"}`), reporter)
	testutil.AssertStatus(t, rec, http.StatusCreated)
	rec = w.do(testutil.NewJSONRequest(t, "POST", "/"+is.ID.Hex()+"/feedback", `{"feedback":"Slow","rating":2}`), reporter)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	rec = w.do(httptest.NewRequest("DELETE", "/"+is.ID.Hex(), nil), ptr(testutil.CitizenUser()))
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	rec = w.do(httptest.NewRequest("DELETE", "/"+is.ID.Hex(), nil), reporter)
	testutil.AssertStatus(t, rec, http.StatusOK)

	for _, coll := range []string{"issues", "comments", "feedback"} {
		filter := bson.M{"issue_id": is.ID}
		if coll == "issues" {
			filter = bson.M{"_id": is.ID}
		}
		n, err := w.fx.DB().Collection(coll).CountDocuments(ctx, filter)
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("%s left behind: %d", coll, n)
		}
	}
}

func TestFeedback_OncePerUser(t *testing.T) {
	w := newWorld(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	is := w.fx.CreateIssue(ctx, "Water", w.reporter.ID, w.panchayat)
	user := ptr(testutil.CitizenUser())
	path := "/" + is.ID.Hex() + "/feedback"

	rec := w.do(testutil.NewJSONRequest(t, "POST", path, `{"feedback":"Fixed fast","rating":5}`), user)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	rec = w.do(testutil.NewJSONRequest(t, "POST", path, `{"feedback":"Changed my mind","rating":1}`), user)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	var env testutil.Envelope
	testutil.DecodeJSON(t, rec, &env)
	if env.Error != "ConflictError" {
		t.Errorf("error = %q, want ConflictError", env.Error)
	}

	rec = w.do(testutil.NewJSONRequest(t, "POST", path, `{"feedback":"Out of range","rating":6}`), ptr(testutil.CitizenUser()))
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

func TestComments_NotifyReporter(t *testing.T) {
	w := newWorld(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	is := w.fx.CreateIssue(ctx, "Garbage", w.reporter.ID, w.panchayat)

	rec := w.do(testutil.NewJSONRequest(t, "POST", "/"+is.ID.Hex()+"/comments", `{"text":"Seen it too"}`), ptr(testutil.CitizenUser()))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	rec = w.do(httptest.NewRequest("GET", "/"+is.ID.Hex()+"/comments", nil), nil)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var env testutil.Envelope
	testutil.DecodeJSON(t, rec, &env)
	var list []models.Comment
	_ = json.Unmarshal(env.Data, &list)
	if len(list) != 1 || list[0].UserName != "Test Citizen" {
		t.Errorf("comments = %+v", list)
	}

	n, _ := w.fx.DB().Collection("notifications").CountDocuments(ctx, bson.M{"user_id": w.reporter.ID})
	if n != 1 {
		t.Errorf("reporter notifications = %d, want 1", n)
	}
}
