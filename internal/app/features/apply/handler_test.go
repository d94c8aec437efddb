package apply_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/clubhub/internal/app/features/errors"
	"github.com/dalemusser/clubhub/internal/app/features/apply"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/dalemusser/clubhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type harness struct {
	h  *apply.Handler
	sm *auth.SessionManager
	db *mongo.Database
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.BootTemplates(t)
	sm, err := testutil.SessionManager(db)
	if err != nil {
		t.Fatalf("SessionManager: %v", err)
	}
	logger := zap.NewNop()
	h := apply.NewHandler(db, testutil.Engine(db), sm, uierrors.NewErrorLogger(logger), logger)
	return &harness{h: h, sm: sm, db: db}
}

func (hs *harness) submit(form url.Values) *httptest.ResponseRecorder {
	req := testutil.NewFormRequest("/apply", form, nil)
	rec := httptest.NewRecorder()
	hs.sm.LoadSession(http.HandlerFunc(hs.h.HandleSubmit)).ServeHTTP(rec, req)
	return rec
}

func (hs *harness) count(t *testing.T, coll string, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := hs.db.Collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("count %s: %v", coll, err)
	}
	return n
}

func applicationForm() url.Values {
	return url.Values{
		"email":     {"lead@college.edu"},
		"password":  {"secret1"},
		"name":      {"Priya Lead"},
		"phone":     {"555-0101"},
		"club_name": {"Coding Club"},
		"reason":    {"I have run the club for a year."},
	}
}

func TestHandleSubmit_Success(t *testing.T) {
	hs := newHarness(t)

	rec := hs.submit(applicationForm())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/apply?submitted=1" {
		t.Errorf("Location = %q", loc)
	}
	if n := hs.count(t, "accounts", bson.M{"email": "lead@college.edu"}); n != 1 {
		t.Errorf("accounts = %d, want 1", n)
	}
	if n := hs.count(t, "users", bson.M{"email": "lead@college.edu", "status": models.UserPending, "role": models.RoleClubAdmin}); n != 1 {
		t.Errorf("pending users = %d, want 1", n)
	}
	if n := hs.count(t, "requests", bson.M{"type": models.RequestAdmin, "status": models.RequestPending}); n != 1 {
		t.Errorf("pending admin requests = %d, want 1", n)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge >= 0 {
			t.Error("applicant browser should not hold a session")
		}
	}
}

func TestHandleSubmit_AccountRejected(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, hs *harness)
		form  func() url.Values
	}{
		{
			name: "email in use",
			setup: func(t *testing.T, hs *harness) {
				ctx, cancel := testutil.TestContext()
				defer cancel()
				testutil.NewFixtures(t, hs.db).CreateAccount(ctx, "lead@college.edu", "other12")
			},
			form: applicationForm,
		},
		{
			name:  "weak password",
			setup: func(*testing.T, *harness) {},
			form: func() url.Values {
				f := applicationForm()
				f.Set("password", "abc")
				return f
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := newHarness(t)
			tt.setup(t, hs)

			rec := hs.submit(tt.form())

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (form re-rendered)", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), `class="error-message"`) {
				t.Error("re-rendered form shows no error message")
			}
			if n := hs.count(t, "users", bson.M{}); n != 0 {
				t.Errorf("users = %d, want 0", n)
			}
			if n := hs.count(t, "requests", bson.M{}); n != 0 {
				t.Errorf("requests = %d, want 0", n)
			}
		})
	}
}

func TestHandleSubmit_MissingFields(t *testing.T) {
	hs := newHarness(t)

	form := applicationForm()
	form.Del("reason")
	rec := hs.submit(form)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (form re-rendered)", rec.Code)
	}
	if n := hs.count(t, "accounts", bson.M{}); n != 0 {
		t.Errorf("accounts = %d, want 0 (validation runs before sign-up)", n)
	}
}
