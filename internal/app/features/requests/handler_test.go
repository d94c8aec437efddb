package requests_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/clubhub/internal/app/features/errors"
	"github.com/dalemusser/clubhub/internal/app/features/requests"
	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	requeststore "github.com/dalemusser/clubhub/internal/app/store/requests"
	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	userstore "github.com/dalemusser/clubhub/internal/app/store/users"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/dalemusser/clubhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type harness struct {
	t   *testing.T
	db  *mongo.Database
	fx  *testutil.Fixtures
	mux http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	testutil.BootTemplates(t)
	db := testutil.SetupTestDB(t)
	sm, err := testutil.SessionManager(db)
	if err != nil {
		t.Fatalf("SessionManager: %v", err)
	}
	logger := zap.NewNop()
	h := requests.NewHandler(testutil.Engine(db), uierrors.NewErrorLogger(logger), logger)
	return &harness{t: t, db: db, fx: testutil.NewFixtures(t, db), mux: requests.Routes(h, sm)}
}

func (h *harness) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

func (h *harness) decide(path string, form url.Values, s *auth.Session) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set("confirm", "yes")
	return h.serve(testutil.NewFormRequest(path, form, s))
}

func location(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	return rec.Header().Get("Location")
}

func TestApproveAdminRequest_SuperAdmin(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := h.fx.CreateUser(ctx, primitive.NewObjectID(), "Pat Lead", "pat@test.edu", models.RoleClubAdmin, "Coding Club", models.UserPending)
	ar := h.fx.CreateAdminRequest(ctx, u)

	rec := h.decide("/admin/"+ar.ID.Hex()+"/approve", url.Values{"user_id": {u.ID.Hex()}}, testutil.SuperAdminSession())
	if got, want := location(t, rec), "/requests?msg=admin_approved&tab=admin"; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}

	got, err := userstore.New(h.db).Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get user: %v", err)
	}
	if got.Status != models.UserApproved {
		t.Errorf("user status = %q, want approved", got.Status)
	}

	// A second decision finds the request closed.
	rec = h.decide("/admin/"+ar.ID.Hex()+"/reject", nil, testutil.SuperAdminSession())
	if got, want := location(t, rec), "/requests?msg=already_decided&tab=admin"; got != want {
		t.Errorf("second decision Location = %q, want %q", got, want)
	}
}

func TestRejectAdminRequest_DeletesProfile(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := h.fx.CreateUser(ctx, primitive.NewObjectID(), "Pat Lead", "pat@test.edu", models.RoleClubAdmin, "Coding Club", models.UserPending)
	ar := h.fx.CreateAdminRequest(ctx, u)

	rec := h.decide("/admin/"+ar.ID.Hex()+"/reject", nil, testutil.SuperAdminSession())
	if got, want := location(t, rec), "/requests?msg=admin_rejected&tab=admin"; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}

	if _, err := userstore.New(h.db).Get(ctx, u.ID); !errors.Is(err, storeerr.ErrNotFound) {
		t.Errorf("Get user after reject: err = %v, want ErrNotFound", err)
	}
	r, err := requeststore.New(h.db).Get(ctx, ar.ID)
	if err != nil {
		t.Fatalf("Get request: %v", err)
	}
	if st := r.Header().Status; st != models.RequestRejected {
		t.Errorf("request status = %q, want rejected", st)
	}
}

func TestAdminRequest_ClubAdminForbidden(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := h.fx.CreateUser(ctx, primitive.NewObjectID(), "Pat Lead", "pat@test.edu", models.RoleClubAdmin, "Coding Club", models.UserPending)
	ar := h.fx.CreateAdminRequest(ctx, u)

	rec := h.decide("/admin/"+ar.ID.Hex()+"/approve", nil, testutil.ClubAdminSession("Coding Club"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestApproveClubJoin_OwnClub(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h.fx.CreateClub(ctx, "Coding Club", 10)
	cj := h.fx.CreateClubJoinRequest(ctx, "Coding Club", "stu@test.edu")

	rec := h.decide("/club/"+cj.ID.Hex()+"/approve", url.Values{"club_name": {"Coding Club"}}, testutil.ClubAdminSession("Coding Club"))
	if got, want := location(t, rec), "/requests?msg=club_approved&tab=club"; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}

	c, err := clubstore.New(h.db).GetByName(ctx, "Coding Club")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if c.Members != 11 {
		t.Errorf("members = %d, want 11", c.Members)
	}
}

func TestClubJoin_OtherClubForbidden(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h.fx.CreateClub(ctx, "Music Club", 10)
	cj := h.fx.CreateClubJoinRequest(ctx, "Music Club", "stu@test.edu")

	for _, path := range []string{"/club/" + cj.ID.Hex() + "/approve", "/club/" + cj.ID.Hex() + "/reject"} {
		rec := h.decide(path, nil, testutil.ClubAdminSession("Coding Club"))
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: status = %d, want 403", path, rec.Code)
		}
	}

	c, err := clubstore.New(h.db).GetByName(ctx, "Music Club")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if c.Members != 10 {
		t.Errorf("members = %d, want 10", c.Members)
	}
}

func TestRejectClubJoin_KeepsMembers(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h.fx.CreateClub(ctx, "Coding Club", 10)
	cj := h.fx.CreateClubJoinRequest(ctx, "Coding Club", "stu@test.edu")

	rec := h.decide("/club/"+cj.ID.Hex()+"/reject", nil, testutil.SuperAdminSession())
	if got, want := location(t, rec), "/requests?msg=club_rejected&tab=club"; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}

	c, err := clubstore.New(h.db).GetByName(ctx, "Coding Club")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if c.Members != 10 {
		t.Errorf("members = %d, want 10", c.Members)
	}
}

func TestDecision_Outcomes(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h.fx.CreateClub(ctx, "Coding Club", 10)
	cj := h.fx.CreateClubJoinRequest(ctx, "Coding Club", "stu@test.edu")
	u := h.fx.CreateUser(ctx, primitive.NewObjectID(), "Pat Lead", "pat@test.edu", models.RoleClubAdmin, "Coding Club", models.UserPending)
	ar := h.fx.CreateAdminRequest(ctx, u)

	tests := []struct {
		name string
		path string
		form url.Values
		want string
	}{
		{"unknown id", "/club/" + primitive.NewObjectID().Hex() + "/approve", nil, "/requests?msg=not_found&tab=club"},
		{"wrong type", "/club/" + ar.ID.Hex() + "/approve", nil, "/requests?msg=not_found&tab=club"},
		{"club mismatch", "/club/" + cj.ID.Hex() + "/approve", url.Values{"club_name": {"Music Club"}}, "/requests?msg=mismatch&tab=club"},
		{"user mismatch", "/admin/" + ar.ID.Hex() + "/approve", url.Values{"user_id": {primitive.NewObjectID().Hex()}}, "/requests?msg=mismatch&tab=admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.decide(tt.path, tt.form, testutil.SuperAdminSession())
			if got := location(t, rec); got != tt.want {
				t.Errorf("Location = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecision_WithoutConfirmReturnsToList(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h.fx.CreateClub(ctx, "Coding Club", 10)
	cj := h.fx.CreateClubJoinRequest(ctx, "Coding Club", "stu@test.edu")

	req := testutil.NewFormRequest("/club/"+cj.ID.Hex()+"/approve", url.Values{}, testutil.SuperAdminSession())
	rec := h.serve(req)
	if got := location(t, rec); got != "/requests?tab=club" {
		t.Errorf("Location = %q", got)
	}

	r, err := requeststore.New(h.db).Get(ctx, cj.ID)
	if err != nil {
		t.Fatalf("Get request: %v", err)
	}
	if !r.Header().IsPending() {
		t.Error("request decided without confirmation")
	}
}

func TestServeList_Access(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name    string
		session *auth.Session
		want    int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"student role", &auth.Session{UID: primitive.NewObjectID().Hex(), Email: "s@test.edu", Role: "student", Status: models.UserApproved}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewRequest(http.MethodGet, "/")
			if tt.session != nil {
				req = auth.WithTestSession(req, tt.session)
			}
			rec := h.serve(req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestConfirm_OtherClubHidden(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h.fx.CreateClub(ctx, "Music Club", 10)
	cj := h.fx.CreateClubJoinRequest(ctx, "Music Club", "music.student@test.edu")
	u := h.fx.CreateUser(ctx, primitive.NewObjectID(), "Pat Lead", "pat@test.edu", models.RoleClubAdmin, "Coding Club", models.UserPending)
	ar := h.fx.CreateAdminRequest(ctx, u)

	tests := []struct {
		name   string
		path   string
		secret string
	}{
		{"other club join request", "/club/" + cj.ID.Hex() + "/approve", "music.student@test.edu"},
		{"other club reject", "/club/" + cj.ID.Hex() + "/reject", "music.student@test.edu"},
		{"admin application", "/admin/" + ar.ID.Hex() + "/approve", "pat@test.edu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.serve(testutil.NewAuthenticatedRequest(http.MethodGet, tt.path, testutil.ClubAdminSession("Coding Club")))
			if rec.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", rec.Code)
			}
			if strings.Contains(rec.Body.String(), tt.secret) {
				t.Errorf("forbidden page shows %q", tt.secret)
			}
		})
	}
}

func TestConfirm_ShowsSummary(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h.fx.CreateClub(ctx, "Coding Club", 10)
	cj := h.fx.CreateClubJoinRequest(ctx, "Coding Club", "stu@test.edu")
	u := h.fx.CreateUser(ctx, primitive.NewObjectID(), "Pat Lead", "pat@test.edu", models.RoleClubAdmin, "Coding Club", models.UserPending)
	ar := h.fx.CreateAdminRequest(ctx, u)

	rec := h.serve(testutil.NewAuthenticatedRequest(http.MethodGet,
		"/club/"+cj.ID.Hex()+"/approve?club_name=Coding+Club", testutil.ClubAdminSession("Coding Club")))
	if rec.Code != http.StatusOK {
		t.Fatalf("club confirm status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Approve this club join request?", "stu@test.edu", `name="club_name" value="Coding Club"`, `name="confirm" value="yes"`} {
		if !strings.Contains(body, want) {
			t.Errorf("club confirm body missing %q", want)
		}
	}

	rec = h.serve(testutil.NewAuthenticatedRequest(http.MethodGet, "/admin/"+ar.ID.Hex()+"/reject", testutil.SuperAdminSession()))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin confirm status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "pat@test.edu") {
		t.Error("admin confirm should show the applicant")
	}
}

func TestConfirm_ClosedOrMismatched(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h.fx.CreateClub(ctx, "Coding Club", 10)
	cj := h.fx.CreateClubJoinRequest(ctx, "Coding Club", "stu@test.edu")
	decided := h.fx.CreateClubJoinRequest(ctx, "Coding Club", "done@test.edu")
	if rec := h.decide("/club/"+decided.ID.Hex()+"/reject", nil, testutil.SuperAdminSession()); rec.Code != http.StatusSeeOther {
		t.Fatalf("reject status = %d", rec.Code)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"club request on admin tab", "/admin/" + cj.ID.Hex() + "/approve", "/requests?msg=not_found&tab=admin"},
		{"unknown id", "/club/" + primitive.NewObjectID().Hex() + "/approve", "/requests?msg=not_found&tab=club"},
		{"already decided", "/club/" + decided.ID.Hex() + "/approve", "/requests?msg=already_decided&tab=club"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.serve(testutil.NewAuthenticatedRequest(http.MethodGet, tt.path, testutil.SuperAdminSession()))
			if got := location(t, rec); got != tt.want {
				t.Errorf("Location = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServeList_ClubAdminSeesOwnClubOnly(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h.fx.CreateClubJoinRequest(ctx, "Coding Club", "coder@test.edu")
	h.fx.CreateClubJoinRequest(ctx, "Music Club", "singer@test.edu")

	rec := h.serve(testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.ClubAdminSession("Coding Club")))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "coder@test.edu") {
		t.Error("own club request missing from list")
	}
	if strings.Contains(body, "singer@test.edu") {
		t.Error("list shows another club's request")
	}
	if strings.Contains(body, "Admin Applications") {
		t.Error("club admin should not get the admin tab")
	}

	// Asking for the admin tab falls back to the club tab.
	rec = h.serve(testutil.NewAuthenticatedRequest(http.MethodGet, "/?tab=admin", testutil.ClubAdminSession("Coding Club")))
	if !strings.Contains(rec.Body.String(), "coder@test.edu") {
		t.Error("admin tab should fall back to the club list")
	}
}
