package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/identity"
	"github.com/dalemusser/clubhub/internal/app/system/workflow"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/dalemusser/clubhub/internal/testutil"
	"github.com/dalemusser/clubhub/internal/testutil/memstore"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type env struct {
	users    *memstore.Users
	accounts *memstore.Accounts
	clubs    *memstore.Clubs
	requests *memstore.Requests
	events   *memstore.Events
	provider *identity.Provider
	engine   *workflow.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		users:    memstore.NewUsers(),
		accounts: memstore.NewAccounts(),
		clubs: memstore.NewClubs(
			models.Club{Name: "Coding Club", Members: 156},
			models.Club{Name: "Music Club", Members: 178},
		),
		requests: memstore.NewRequests(),
		events:   memstore.NewEvents(),
	}
	e.provider = identity.NewProvider(e.accounts, nil, identity.WithBcryptCost(bcrypt.MinCost))
	e.engine = workflow.New(workflow.Deps{
		Users:    e.users,
		Clubs:    e.clubs,
		Requests: e.requests,
		Events:   e.events,
		Accounts: e.provider,
	})
	return e
}

var (
	superAdmin = &auth.Session{UID: primitive.NewObjectID().Hex(), Email: "root@college.edu", Role: models.RoleSuperAdmin, Status: models.UserApproved}
	codingLead = &auth.Session{UID: primitive.NewObjectID().Hex(), Email: "code@college.edu", Role: models.RoleClubAdmin, ClubName: "Coding Club", Status: models.UserApproved}
	musicLead  = &auth.Session{UID: primitive.NewObjectID().Hex(), Email: "music@college.edu", Role: models.RoleClubAdmin, ClubName: "Music Club", Status: models.UserApproved}
)

func joinInput(club string) workflow.ClubJoinInput {
	return workflow.ClubJoinInput{
		StudentName:  "Asha Rao",
		StudentEmail: "asha@college.edu",
		StudentYear:  "2nd Year",
		StudentDept:  "CSE",
		ClubName:     club,
		JoinReason:   "I like it.",
	}
}

func application(email, club string) workflow.AdminApplication {
	return workflow.AdminApplication{
		Email:    email,
		Password: "secret123",
		Name:     "Priya Sharma",
		Phone:    "9999999999",
		ClubName: club,
		Reason:   "I run the club.",
	}
}

func (e *env) submitJoin(t *testing.T, club string) primitive.ObjectID {
	t.Helper()
	res, err := e.engine.SubmitClubJoin(context.Background(), joinInput(club))
	if err != nil {
		t.Fatalf("SubmitClubJoin failed: %v", err)
	}
	return res.RequestID
}

type signOutSpy struct{ calls int }

func (s *signOutSpy) SignOut(context.Context) { s.calls++ }

/*─────────────────────────────────────────────────────────────────────────────*
| Submissions                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func TestSubmitClubJoin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.engine.SubmitClubJoin(ctx, joinInput("Music Club"))
	if err != nil {
		t.Fatalf("SubmitClubJoin failed: %v", err)
	}
	if res.OpID == "" {
		t.Error("expected an operation id")
	}

	r, err := e.requests.Get(ctx, res.RequestID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	cj := r.(*models.ClubJoinRequest)
	if !cj.IsPending() || cj.ClubName != "Music Club" || cj.StudentEmail != "asha@college.edu" {
		t.Errorf("stored request = %+v", cj)
	}

	// Duplicates are allowed.
	if _, err := e.engine.SubmitClubJoin(ctx, joinInput("Music Club")); err != nil {
		t.Errorf("second submission failed: %v", err)
	}
}

func TestSubmitClubJoin_Invalid(t *testing.T) {
	e := newEnv(t)
	in := joinInput("Music Club")
	in.StudentEmail = "nope"
	in.StudentName = "  "

	_, err := e.engine.SubmitClubJoin(context.Background(), in)
	if !errors.Is(err, workflow.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	var ie *workflow.InputError
	if !errors.As(err, &ie) || ie.Fields["student_email"] == "" || ie.Fields["student_name"] == "" {
		t.Errorf("fields = %+v", ie)
	}
}

func TestSubmitClubJoin_StoreFailure(t *testing.T) {
	e := newEnv(t)
	e.requests.FailOn("InsertClubJoin", errors.New("disk full"))

	_, err := e.engine.SubmitClubJoin(context.Background(), joinInput("Music Club"))
	var se *workflow.StoreError
	if !errors.As(err, &se) || se.Kind != storeerr.WriteFailed {
		t.Errorf("err = %v, want WriteFailed StoreError", err)
	}
}

func TestSubmitAdminRequest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	spy := &signOutSpy{}

	res, err := e.engine.SubmitAdminRequest(ctx, spy, application("Lead@College.edu", "Coding Club"))
	if err != nil {
		t.Fatalf("SubmitAdminRequest failed: %v", err)
	}
	if spy.calls != 1 {
		t.Errorf("sign-out calls = %d, want 1", spy.calls)
	}
	if len(res.Inconsistencies) != 0 {
		t.Errorf("unexpected inconsistencies %+v", res.Inconsistencies)
	}

	r, _ := e.requests.Get(ctx, res.RequestID)
	ar := r.(*models.AdminRequest)
	if !ar.IsPending() || ar.Email != "lead@college.edu" || ar.ClubName != "Coding Club" {
		t.Errorf("request = %+v", ar)
	}

	u, err := e.users.Get(ctx, ar.UserID)
	if err != nil {
		t.Fatalf("profile missing: %v", err)
	}
	if u.Status != models.UserPending || u.Role != models.RoleClubAdmin || u.ClubName != "Coding Club" {
		t.Errorf("profile = %+v", u)
	}

	acct, err := e.accounts.GetByEmail(ctx, "lead@college.edu")
	if err != nil || acct.ID != ar.UserID {
		t.Errorf("account %v does not match request user %v (err %v)", acct.ID, ar.UserID, err)
	}
}

func TestSubmitAdminRequest_AccountRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.engine.SubmitAdminRequest(ctx, nil, application("taken@college.edu", "Coding Club")); err != nil {
		t.Fatalf("first application failed: %v", err)
	}

	tests := []struct {
		name string
		app  workflow.AdminApplication
		want error
	}{
		{"email in use", application("taken@college.edu", "Music Club"), identity.ErrEmailInUse},
		{"weak password", func() workflow.AdminApplication {
			a := application("new@college.edu", "Music Club")
			a.Password = "123"
			return a
		}(), identity.ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &signOutSpy{}
			_, err := e.engine.SubmitAdminRequest(ctx, spy, tt.app)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if spy.calls != 0 {
				t.Error("no sign-out expected when the account was not created")
			}
		})
	}

	if n := e.users.Len(); n != 1 {
		t.Errorf("users = %d, want 1", n)
	}
}

func TestSubmitAdminRequest_OrphanedAccount(t *testing.T) {
	for _, step := range []struct {
		store string
		op    string
	}{
		{"users", "Create"},
		{"requests", "InsertAdmin"},
	} {
		t.Run(step.store+"."+step.op, func(t *testing.T) {
			e := newEnv(t)
			boom := errors.New("write failed")
			if step.store == "users" {
				e.users.FailOn(step.op, boom)
			} else {
				e.requests.FailOn(step.op, boom)
			}

			res, err := e.engine.SubmitAdminRequest(context.Background(), nil, application("orphan@college.edu", "Coding Club"))
			var se *workflow.StoreError
			if !errors.As(err, &se) || !errors.Is(err, boom) {
				t.Fatalf("err = %v, want StoreError wrapping cause", err)
			}
			if len(res.Inconsistencies) != 1 || res.Inconsistencies[0].Kind != workflow.OrphanedAccount {
				t.Fatalf("inconsistencies = %+v", res.Inconsistencies)
			}
			if res.Inconsistencies[0].UserID == nil {
				t.Error("orphan report should name the account")
			}
			if e.accounts.Len() != 1 {
				t.Errorf("accounts = %d, want the orphan to remain", e.accounts.Len())
			}
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Admin decisions                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (e *env) pendingAdmin(t *testing.T, email, club string) *models.AdminRequest {
	t.Helper()
	res, err := e.engine.SubmitAdminRequest(context.Background(), nil, application(email, club))
	if err != nil {
		t.Fatalf("SubmitAdminRequest failed: %v", err)
	}
	r, _ := e.requests.Get(context.Background(), res.RequestID)
	return r.(*models.AdminRequest)
}

func TestApproveAdminRequest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ar := e.pendingAdmin(t, "lead@college.edu", "Coding Club")

	if _, err := e.engine.ApproveAdminRequest(ctx, codingLead, ar.ID, ar.UserID); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("club admin: err = %v, want ErrForbidden", err)
	}
	if _, err := e.engine.ApproveAdminRequest(ctx, nil, ar.ID, ar.UserID); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("anonymous: err = %v, want ErrForbidden", err)
	}

	if _, err := e.engine.ApproveAdminRequest(ctx, superAdmin, ar.ID, ar.UserID); err != nil {
		t.Fatalf("ApproveAdminRequest failed: %v", err)
	}
	u, _ := e.users.Get(ctx, ar.UserID)
	if !u.IsApproved() {
		t.Errorf("user status = %q, want approved", u.Status)
	}
	r, _ := e.requests.Get(ctx, ar.ID)
	h := r.Header()
	if h.Status != models.RequestApproved || h.ApprovedBy != "root@college.edu" || h.ApprovedAt == nil {
		t.Errorf("request header = %+v", h)
	}

	if _, err := e.engine.ApproveAdminRequest(ctx, superAdmin, ar.ID, ar.UserID); !errors.Is(err, workflow.ErrAlreadyDecided) {
		t.Errorf("second approval: err = %v, want ErrAlreadyDecided", err)
	}
}

func TestApproveAdminRequest_Lookups(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ar := e.pendingAdmin(t, "lead@college.edu", "Coding Club")
	joinID := e.submitJoin(t, "Music Club")

	tests := []struct {
		name   string
		reqID  primitive.ObjectID
		userID primitive.ObjectID
		want   error
	}{
		{"missing", primitive.NewObjectID(), primitive.NilObjectID, workflow.ErrRequestNotFound},
		{"wrong type", joinID, primitive.NilObjectID, workflow.ErrWrongRequestType},
		{"user mismatch", ar.ID, primitive.NewObjectID(), workflow.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.engine.ApproveAdminRequest(ctx, superAdmin, tt.reqID, tt.userID); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApproveAdminRequest_UserWriteFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ar := e.pendingAdmin(t, "lead@college.edu", "Coding Club")
	e.users.FailOn("SetStatus", errors.New("timeout"))

	_, err := e.engine.ApproveAdminRequest(ctx, superAdmin, ar.ID, ar.UserID)
	var se *workflow.StoreError
	if !errors.As(err, &se) || se.Kind != storeerr.WriteFailed {
		t.Fatalf("err = %v, want WriteFailed", err)
	}
	r, _ := e.requests.Get(ctx, ar.ID)
	if !r.Header().IsPending() {
		t.Error("request must stay pending when the profile write fails")
	}
}

func TestRejectAdminRequest_ThenSignInFindsNoProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ar := e.pendingAdmin(t, "lead@college.edu", "Coding Club")

	if _, err := e.engine.RejectAdminRequest(ctx, superAdmin, ar.ID, ar.UserID); err != nil {
		t.Fatalf("RejectAdminRequest failed: %v", err)
	}
	if _, err := e.users.Get(ctx, ar.UserID); !errors.Is(err, storeerr.ErrNotFound) {
		t.Errorf("profile should be deleted, got %v", err)
	}
	r, _ := e.requests.Get(ctx, ar.ID)
	if h := r.Header(); h.Status != models.RequestRejected || h.RejectedBy != "root@college.edu" {
		t.Errorf("request header = %+v", h)
	}

	sc := auth.NewSessionContext(auth.NewResolver(e.users, nil, nil), identity.NewClient(e.provider, nil))
	_, err := sc.SignIn(ctx, "lead@college.edu", "secret123")
	if !errors.Is(err, auth.ErrProfileNotFound) {
		t.Errorf("sign-in err = %v, want ErrProfileNotFound", err)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Club-join decisions                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func TestApproveClubJoin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.submitJoin(t, "Coding Club")

	if _, err := e.engine.ApproveClubJoin(ctx, musicLead, id, ""); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("other club's admin: err = %v, want ErrForbidden", err)
	}
	if _, err := e.engine.ApproveClubJoin(ctx, codingLead, id, "Music Club"); !errors.Is(err, workflow.ErrInvalidInput) {
		t.Errorf("mismatched club: err = %v, want ErrInvalidInput", err)
	}

	res, err := e.engine.ApproveClubJoin(ctx, codingLead, id, "Coding Club")
	if err != nil {
		t.Fatalf("ApproveClubJoin failed: %v", err)
	}
	if len(res.Inconsistencies) != 0 {
		t.Errorf("unexpected inconsistencies %+v", res.Inconsistencies)
	}
	if got := e.clubs.Members("Coding Club"); got != 157 {
		t.Errorf("members = %d, want 157", got)
	}

	if _, err := e.engine.ApproveClubJoin(ctx, superAdmin, id, ""); !errors.Is(err, workflow.ErrAlreadyDecided) {
		t.Errorf("second approval: err = %v, want ErrAlreadyDecided", err)
	}
	if got := e.clubs.Members("Coding Club"); got != 157 {
		t.Errorf("members after repeat = %d, want 157", got)
	}
}

func TestApproveClubJoin_ClubNotFound(t *testing.T) {
	e := newEnv(t)
	id := e.submitJoin(t, "Chess Club")

	res, err := e.engine.ApproveClubJoin(context.Background(), superAdmin, id, "Chess Club")
	if err != nil {
		t.Fatalf("ApproveClubJoin should succeed, got %v", err)
	}
	if len(res.Inconsistencies) != 1 || res.Inconsistencies[0].Kind != workflow.ClubNotFound {
		t.Fatalf("inconsistencies = %+v", res.Inconsistencies)
	}
	r, _ := e.requests.Get(context.Background(), id)
	if r.Header().Status != models.RequestApproved {
		t.Error("request should be approved despite the missing club")
	}
}

func TestApproveClubJoin_ConcurrentDistinctRequests(t *testing.T) {
	e := newEnv(t)
	const n = 25
	ids := make([]primitive.ObjectID, n)
	for i := range ids {
		ids[i] = e.submitJoin(t, "Music Club")
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id primitive.ObjectID) {
			defer wg.Done()
			if _, err := e.engine.ApproveClubJoin(context.Background(), musicLead, id, ""); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("approval failed: %v", err)
	}

	if got := e.clubs.Members("Music Club"); got != 178+n {
		t.Errorf("members = %d, want %d", got, 178+n)
	}
}

func TestApproveClubJoin_ConcurrentSameRequest(t *testing.T) {
	e := newEnv(t)
	id := e.submitJoin(t, "Music Club")

	const n = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.engine.ApproveClubJoin(context.Background(), superAdmin, id, "")
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else if !errors.Is(err, workflow.ErrAlreadyDecided) {
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 {
		t.Errorf("successful approvals = %d, want 1", ok)
	}
	if got := e.clubs.Members("Music Club"); got != 179 {
		t.Errorf("members = %d, want 179", got)
	}
}

// Against Mongo the member counter must absorb concurrent approvals of
// distinct requests without losing an increment.
func TestApproveClubJoin_ConcurrentMongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateClub(ctx, "Music Club", 178)
	const n = 20
	ids := make([]primitive.ObjectID, n)
	for i := range ids {
		ids[i] = fx.CreateClubJoinRequest(ctx, "Music Club", "student@college.edu").ID
	}

	engine := testutil.Engine(db)
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id primitive.ObjectID) {
			defer wg.Done()
			if _, err := engine.ApproveClubJoin(ctx, musicLead, id, ""); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("approval failed: %v", err)
	}

	var club models.Club
	if err := db.Collection("clubs").FindOne(ctx, bson.M{"name": "Music Club"}).Decode(&club); err != nil {
		t.Fatalf("load club: %v", err)
	}
	if club.Members != 178+n {
		t.Errorf("members = %d, want %d", club.Members, 178+n)
	}
}

func TestRejectClubJoin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.submitJoin(t, "Music Club")

	if _, err := e.engine.RejectClubJoin(ctx, codingLead, id); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("other club's admin: err = %v, want ErrForbidden", err)
	}
	if _, err := e.engine.RejectClubJoin(ctx, musicLead, id); err != nil {
		t.Fatalf("RejectClubJoin failed: %v", err)
	}

	r, _ := e.requests.Get(ctx, id)
	if h := r.Header(); h.Status != models.RequestRejected || h.RejectedBy != "music@college.edu" || h.RejectedAt == nil {
		t.Errorf("request header = %+v", h)
	}
	if got := e.clubs.Members("Music Club"); got != 178 {
		t.Errorf("members = %d, want unchanged 178", got)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Listings                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func TestListPendingClubJoinRequests_Scoped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.submitJoin(t, "Coding Club")
	e.submitJoin(t, "Music Club")
	e.submitJoin(t, "Music Club")

	got, err := e.engine.ListPendingClubJoinRequests(ctx, codingLead)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 1 || got[0].ClubName != "Coding Club" {
		t.Errorf("club admin sees %+v", got)
	}

	all, _ := e.engine.ListPendingClubJoinRequests(ctx, superAdmin)
	if len(all) != 3 {
		t.Errorf("super admin sees %d, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.After(all[i-1].Timestamp) {
			t.Error("expected newest first")
		}
	}

	if _, err := e.engine.ListPendingClubJoinRequests(ctx, nil); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("anonymous: err = %v, want ErrForbidden", err)
	}
}

func TestListPendingAdminRequests(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.pendingAdmin(t, "a@college.edu", "Coding Club")
	e.pendingAdmin(t, "b@college.edu", "Music Club")

	got, err := e.engine.ListPendingAdminRequests(ctx, superAdmin)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 2 || got[0].Email != "b@college.edu" {
		t.Errorf("got %+v, want 2 newest first", got)
	}

	if _, err := e.engine.ListPendingAdminRequests(ctx, codingLead); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("club admin: err = %v, want ErrForbidden", err)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| End to end                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func TestPendingClubJoin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	music := e.submitJoin(t, "Music Club")
	decided := e.submitJoin(t, "Music Club")
	if _, err := e.engine.RejectClubJoin(ctx, superAdmin, decided); err != nil {
		t.Fatalf("RejectClubJoin failed: %v", err)
	}
	ar := e.pendingAdmin(t, "lead@college.edu", "Coding Club")

	tests := []struct {
		name  string
		actor *auth.Session
		id    primitive.ObjectID
		want  error
	}{
		{"own club", musicLead, music, nil},
		{"super admin", superAdmin, music, nil},
		{"other club", codingLead, music, workflow.ErrForbidden},
		{"other club decided", codingLead, decided, workflow.ErrForbidden},
		{"anonymous", nil, music, workflow.ErrForbidden},
		{"decided", musicLead, decided, workflow.ErrAlreadyDecided},
		{"admin request", superAdmin, ar.ID, workflow.ErrWrongRequestType},
		{"missing", superAdmin, primitive.NewObjectID(), workflow.ErrRequestNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cj, err := e.engine.PendingClubJoin(ctx, tt.actor, tt.id)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if tt.want == nil && (cj == nil || cj.ClubName != "Music Club") {
				t.Errorf("request = %+v", cj)
			}
			if tt.want != nil && cj != nil {
				t.Errorf("refused lookup returned %+v", cj)
			}
		})
	}
}

func TestPendingAdminRequest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ar := e.pendingAdmin(t, "lead@college.edu", "Coding Club")
	joinID := e.submitJoin(t, "Music Club")

	tests := []struct {
		name  string
		actor *auth.Session
		id    primitive.ObjectID
		want  error
	}{
		{"super admin", superAdmin, ar.ID, nil},
		{"club admin", codingLead, ar.ID, workflow.ErrForbidden},
		{"anonymous", nil, ar.ID, workflow.ErrForbidden},
		{"join request", superAdmin, joinID, workflow.ErrWrongRequestType},
		{"missing", superAdmin, primitive.NewObjectID(), workflow.ErrRequestNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.engine.PendingAdminRequest(ctx, tt.actor, tt.id)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if tt.want == nil && got.Email != "lead@college.edu" {
				t.Errorf("email = %q", got.Email)
			}
		})
	}
}

func TestAdminApplication_EndToEnd(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	resolver := auth.NewResolver(e.users, nil, nil)

	ar := e.pendingAdmin(t, "priya@college.edu", "Coding Club")

	// Pending: sign-in is refused.
	sc := auth.NewSessionContext(resolver, identity.NewClient(e.provider, nil))
	if _, err := sc.SignIn(ctx, "priya@college.edu", "secret123"); !errors.Is(err, auth.ErrPendingApproval) {
		t.Fatalf("pending sign-in err = %v, want ErrPendingApproval", err)
	}

	if _, err := e.engine.ApproveAdminRequest(ctx, superAdmin, ar.ID, ar.UserID); err != nil {
		t.Fatalf("ApproveAdminRequest failed: %v", err)
	}

	sc = auth.NewSessionContext(resolver, identity.NewClient(e.provider, nil))
	s, err := sc.SignIn(ctx, "priya@college.edu", "secret123")
	if err != nil {
		t.Fatalf("approved sign-in failed: %v", err)
	}
	if s.Role != models.RoleClubAdmin || s.ClubName != "Coding Club" {
		t.Errorf("session = %+v", s)
	}
}

func TestClubJoin_EndToEndReject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.submitJoin(t, "Music Club")

	pending, _ := e.engine.ListPendingClubJoinRequests(ctx, musicLead)
	if len(pending) != 1 || pending[0].ID != id {
		t.Fatalf("pending = %+v", pending)
	}
	if _, err := e.engine.RejectClubJoin(ctx, musicLead, id); err != nil {
		t.Fatalf("RejectClubJoin failed: %v", err)
	}
	pending, _ = e.engine.ListPendingClubJoinRequests(ctx, musicLead)
	if len(pending) != 0 {
		t.Errorf("pending after reject = %d", len(pending))
	}
	if got := e.clubs.Members("Music Club"); got != 178 {
		t.Errorf("members = %d, want 178", got)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Events                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func eventInput(club string) workflow.EventInput {
	return workflow.EventInput{
		Title:       "Hack Night",
		Club:        club,
		Type:        models.EventHackathon,
		Date:        time.Now().AddDate(0, 0, 5).Format("2006-01-02"),
		Time:        "6:00 PM",
		Venue:       "Lab 3",
		Description: "Build things.",
		RegLink:     "https://example.com/register",
	}
}

func TestPostEvent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ev, err := e.engine.PostEvent(ctx, codingLead, eventInput(""))
	if err != nil {
		t.Fatalf("PostEvent failed: %v", err)
	}
	if ev.Club != "Coding Club" || ev.PostedBy != "code@college.edu" {
		t.Errorf("event = %+v", ev)
	}

	tests := []struct {
		name  string
		actor *auth.Session
		in    workflow.EventInput
		want  error
	}{
		{"club admin other club", codingLead, eventInput("Music Club"), workflow.ErrForbidden},
		{"anonymous", nil, eventInput("Music Club"), workflow.ErrForbidden},
		{"unknown club", superAdmin, eventInput("Chess Club"), workflow.ErrInvalidInput},
		{"bad type", superAdmin, func() workflow.EventInput { in := eventInput("Music Club"); in.Type = "Party"; return in }(), workflow.ErrInvalidInput},
		{"bad date", superAdmin, func() workflow.EventInput { in := eventInput("Music Club"); in.Date = "soon"; return in }(), workflow.ErrInvalidInput},
		{"bad link", superAdmin, func() workflow.EventInput { in := eventInput("Music Club"); in.RegLink = "javascript:alert(1)"; return in }(), workflow.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.engine.PostEvent(ctx, tt.actor, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := e.engine.PostEvent(ctx, superAdmin, eventInput("Music Club")); err != nil {
		t.Errorf("super admin any existing club: %v", err)
	}
	if got := len(e.events.All()); got != 2 {
		t.Errorf("events stored = %d, want 2", got)
	}
}
