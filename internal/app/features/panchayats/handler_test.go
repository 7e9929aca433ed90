package panchayats_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/civictrack/internal/app/features/panchayats"
	"github.com/dalemusser/civictrack/internal/app/hierarchy"
	"github.com/dalemusser/civictrack/internal/app/system/auth"
	"github.com/dalemusser/civictrack/internal/app/system/bulk"
	"github.com/dalemusser/civictrack/internal/app/system/indexes"
	"github.com/dalemusser/civictrack/internal/app/system/txn"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/dalemusser/civictrack/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (chi.Router, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	logger := zap.NewNop()
	svc := hierarchy.NewForDB(db, txn.New(db.Client(), logger), logger)
	return panchayats.Routes(panchayats.NewHandler(svc, logger), auth.NewManager(nil, logger)), testutil.NewFixtures(t, db)
}

func serve(router http.Handler, req *http.Request, user testutil.TestUser) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(req, user))
	return rec
}

func decodePanchayat(t *testing.T, rec *httptest.ResponseRecorder) models.Panchayat {
	t.Helper()
	var env testutil.Envelope
	testutil.DecodeJSON(t, rec, &env)
	var p models.Panchayat
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("decode panchayat: %v", err)
	}
	return p
}

func TestCreate_Validation(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	mla := fx.CreateMLA(ctx, "MLA", "mla@example.com")
	fx.CreateConstituency(ctx, "Parent", "VC-1", mla.ID)
	admin := testutil.AdminUser()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{
			name:       "valid",
			body:       `{"name":"Green","panchayat_id":"VP-1","constituency_id":"VC-1","ward_list":[{"ward_id":"1","ward_name":"Ward One"}]}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "empty ward_list",
			body:       `{"name":"Green","panchayat_id":"VP-2","constituency_id":"VC-1","ward_list":[]}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "ward_list",
		},
		{
			name:       "nested ward name too short",
			body:       `{"name":"Green","panchayat_id":"VP-3","constituency_id":"VC-1","ward_list":[{"ward_id":"1","ward_name":"Ok ward"},{"ward_id":"2","ward_name":"x"}]}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "ward_list[1].ward_name",
		},
		{
			name:       "ward_id too long",
			body:       `{"name":"Green","panchayat_id":"VP-4","constituency_id":"VC-1","ward_list":[{"ward_id":"` + strings.Repeat("9", 51) + `","ward_name":"Ward"}]}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "ward_list[0].ward_id",
		},
		{
			name:       "duplicate panchayat_id",
			body:       `{"name":"Again","panchayat_id":"VP-1","constituency_id":"VC-1","ward_list":[{"ward_id":"1","ward_name":"Ward One"}]}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "panchayat_id",
		},
		{
			name:       "unknown constituency",
			body:       `{"name":"Lost","panchayat_id":"VP-5","constituency_id":"NOPE","ward_list":[{"ward_id":"1","ward_name":"Ward One"}]}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, testutil.NewJSONRequest(t, "POST", "/", tt.body), admin)
			testutil.AssertStatus(t, rec, tt.wantStatus)
			if tt.wantField == "" {
				return
			}
			var env testutil.Envelope
			testutil.DecodeJSON(t, rec, &env)
			if env.Field != tt.wantField {
				t.Errorf("field = %q, want %q (message %q)", env.Field, tt.wantField, env.Message)
			}
		})
	}
}

func TestAddWards_Additive(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	mla := fx.CreateMLA(ctx, "MLA", "mla@example.com")
	fx.CreateConstituency(ctx, "Parent", "AW-C", mla.ID)
	p := fx.CreatePanchayat(ctx, "Wardy", "AW-P", "AW-C")
	before := len(p.WardList)
	user := testutil.AsTestUser(mla)

	rec := serve(router, testutil.NewJSONRequest(t, "PUT", "/add-wards/"+p.ID.Hex(), map[string]any{
		"ward_list": []map[string]string{
			{"ward_id": "AW-P-W2", "ward_name": "Ward 2"},
			{"ward_id": "AW-P-W3", "ward_name": "Ward 3"},
		},
	}), user)
	testutil.AssertStatus(t, rec, http.StatusOK)
	if got := decodePanchayat(t, rec); len(got.WardList) != before+2 {
		t.Errorf("ward count = %d, want %d", len(got.WardList), before+2)
	}

	// Colliding ward_id is rejected and nothing is appended.
	rec = serve(router, testutil.NewJSONRequest(t, "PUT", "/add-wards/"+p.ID.Hex(), map[string]any{
		"ward_list": []map[string]string{{"ward_id": "AW-P-W9", "ward_name": "Ward 9"}, {"ward_id": "AW-P-W2", "ward_name": "Ward 2"}},
	}), user)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)

	rec = serve(router, httptest.NewRequest("GET", "/"+p.ID.Hex(), nil), user)
	if got := decodePanchayat(t, rec); len(got.WardList) != before+2 {
		t.Errorf("ward count after collision = %d, want %d", len(got.WardList), before+2)
	}
}

func TestByConstituency(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	mla := fx.CreateMLA(ctx, "MLA", "mla@example.com")
	fx.CreateConstituency(ctx, "Parent", "BC-1", mla.ID)
	fx.CreatePanchayat(ctx, "A", "BC-P1", "BC-1")
	fx.CreatePanchayat(ctx, "B", "BC-P2", "BC-1")
	citizen := testutil.CitizenUser()

	rec := serve(router, httptest.NewRequest("GET", "/constituency/BC-1", nil), citizen)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var env testutil.Envelope
	testutil.DecodeJSON(t, rec, &env)
	var list []models.Panchayat
	_ = json.Unmarshal(env.Data, &list)
	if len(list) != 2 {
		t.Errorf("got %d panchayats, want 2", len(list))
	}

	rec = serve(router, httptest.NewRequest("GET", "/constituency/NOPE", nil), citizen)
	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestUpdateAndDelete(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	mla := fx.CreateMLA(ctx, "MLA", "mla@example.com")
	fx.CreateConstituency(ctx, "Parent", "UD-1", mla.ID)
	p := fx.CreatePanchayat(ctx, "Before", "UD-P", "UD-1")
	admin := testutil.AdminUser()

	rec := serve(router, testutil.NewJSONRequest(t, "PUT", "/"+p.ID.Hex(), `{}`), admin)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)

	rec = serve(router, testutil.NewJSONRequest(t, "PUT", "/"+p.ID.Hex(), map[string]any{
		"name":      "After",
		"ward_list": []map[string]string{{"ward_id": "N1", "ward_name": "New 1"}},
	}), admin)
	testutil.AssertStatus(t, rec, http.StatusOK)
	got := decodePanchayat(t, rec)
	if got.Name != "After" || len(got.WardList) != 1 || got.WardList[0].WardID != "N1" {
		t.Errorf("got %+v", got)
	}

	rec = serve(router, httptest.NewRequest("DELETE", "/"+p.ID.Hex(), nil), admin)
	testutil.AssertStatus(t, rec, http.StatusOK)
	rec = serve(router, httptest.NewRequest("GET", "/"+p.ID.Hex(), nil), admin)
	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestWrites_RequireStaff(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := serve(router, testutil.NewJSONRequest(t, "POST", "/bulk", `{"panchayats":[]}`), testutil.CitizenUser())
	testutil.AssertStatus(t, rec, http.StatusForbidden)
}

func TestMLAScopedToOwnConstituency(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateMLA(ctx, "Owner", "owner@example.com")
	other := fx.CreateMLA(ctx, "Other", "other@example.com")
	fx.CreateConstituency(ctx, "Owned", "SC-1", owner.ID)
	fx.CreateConstituency(ctx, "Elsewhere", "SC-2", other.ID)
	p := fx.CreatePanchayat(ctx, "Scoped", "SC-P", "SC-1")
	outsider := testutil.AsTestUser(other)

	newPanchayat := func(code, constituency string) map[string]any {
		return map[string]any{
			"name": "New " + code, "panchayat_id": code, "constituency_id": constituency,
			"ward_list": []map[string]string{{"ward_id": code + "-W1", "ward_name": "Ward 1"}},
		}
	}

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"create", testutil.NewJSONRequest(t, "POST", "/", newPanchayat("SC-X", "SC-1"))},
		{"update", testutil.NewJSONRequest(t, "PUT", "/"+p.ID.Hex(), map[string]any{"name": "Renamed"})},
		{"move into own constituency", testutil.NewJSONRequest(t, "PUT", "/"+p.ID.Hex(), map[string]any{"constituency_id": "SC-2"})},
		{"add wards", testutil.NewJSONRequest(t, "PUT", "/add-wards/"+p.ID.Hex(), map[string]any{
			"ward_list": []map[string]string{{"ward_id": "SC-P-W9", "ward_name": "Ward 9"}},
		})},
		{"delete", httptest.NewRequest("DELETE", "/"+p.ID.Hex(), nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, tt.req, outsider)
			testutil.AssertStatus(t, rec, http.StatusForbidden)
		})
	}

	t.Run("bulk reports foreign items per index", func(t *testing.T) {
		rec := serve(router, testutil.NewJSONRequest(t, "POST", "/bulk", map[string]any{
			"panchayats": []map[string]any{newPanchayat("SC-Y", "SC-1"), newPanchayat("SC-Z", "SC-2")},
		}), outsider)
		testutil.AssertStatus(t, rec, http.StatusCreated)
		var body struct {
			Created []models.Panchayat `json:"created"`
			Errors  []bulk.ItemError   `json:"errors"`
		}
		testutil.DecodeJSON(t, rec, &body)
		if len(body.Created) != 1 || body.Created[0].PanchayatID != "SC-Z" {
			t.Errorf("created = %+v, want only SC-Z", body.Created)
		}
		if len(body.Errors) != 1 || body.Errors[0].Index != 0 {
			t.Errorf("errors = %+v, want index 0", body.Errors)
		}
	})

	t.Run("owner may still change it", func(t *testing.T) {
		rec := serve(router, testutil.NewJSONRequest(t, "PUT", "/"+p.ID.Hex(), map[string]any{"name": "Renamed"}), testutil.AsTestUser(owner))
		testutil.AssertStatus(t, rec, http.StatusOK)
	})
}
