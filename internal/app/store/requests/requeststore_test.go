package requeststore_test

import (
	"errors"
	"testing"
	"time"

	requeststore "github.com/dalemusser/clubhub/internal/app/store/requests"
	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/dalemusser/clubhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_InsertAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cj, err := store.InsertClubJoin(ctx, models.ClubJoinRequest{
		StudentName:  "Asha",
		StudentEmail: "asha@college.edu",
		ClubName:     "Music Club",
	})
	if err != nil {
		t.Fatalf("InsertClubJoin failed: %v", err)
	}
	if cj.Status != models.RequestPending || cj.Type != models.RequestClubJoin {
		t.Errorf("header = %+v, want pending club_join", cj.RequestHeader)
	}

	got, err := store.Get(ctx, cj.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, ok := got.(*models.ClubJoinRequest); !ok {
		t.Errorf("Get returned %T, want *ClubJoinRequest", got)
	}

	uid := primitive.NewObjectID()
	ar, err := store.InsertAdmin(ctx, models.AdminRequest{UserID: uid, Email: "lead@college.edu", ClubName: "Coding Club"})
	if err != nil {
		t.Fatalf("InsertAdmin failed: %v", err)
	}
	got, err = store.Get(ctx, ar.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if a, ok := got.(*models.AdminRequest); !ok || a.UserID != uid {
		t.Errorf("Get returned %#v, want admin request for %v", got, uid)
	}

	if _, err := store.Get(ctx, primitive.NewObjectID()); !errors.Is(err, storeerr.ErrNotFound) {
		t.Errorf("missing: err = %v, want ErrNotFound", err)
	}
}

func TestStore_InsertAdmin_RequiresUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.InsertAdmin(ctx, models.AdminRequest{Email: "x@college.edu"}); err == nil {
		t.Error("expected error without user_id")
	}
}

func TestStore_Get_UnknownType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := primitive.NewObjectID()
	if _, err := db.Collection("requests").InsertOne(ctx, bson.M{"_id": id, "type": "club_leave", "status": "pending"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, models.ErrUnknownRequestType) {
		t.Errorf("err = %v, want ErrUnknownRequestType", err)
	}
}

func TestStore_ListPending_MalformedType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// An array type still matches the type filter; it must not decode as
	// either variant.
	doc := bson.M{"_id": primitive.NewObjectID(), "type": bson.A{"admin", "club_join"}, "status": "pending"}
	if _, err := db.Collection("requests").InsertOne(ctx, doc); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := store.ListPendingAdmin(ctx); !errors.Is(err, models.ErrUnknownRequestType) {
		t.Errorf("ListPendingAdmin err = %v, want ErrUnknownRequestType", err)
	}
	if _, err := store.ListPendingClubJoin(ctx, nil); !errors.Is(err, models.ErrUnknownRequestType) {
		t.Errorf("ListPendingClubJoin err = %v, want ErrUnknownRequestType", err)
	}
}

func TestStore_ListPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	join := func(club string, offset time.Duration) models.ClubJoinRequest {
		t.Helper()
		r, err := store.InsertClubJoin(ctx, models.ClubJoinRequest{
			RequestHeader: models.RequestHeader{Timestamp: base.Add(offset)},
			ClubName:      club,
		})
		if err != nil {
			t.Fatalf("InsertClubJoin failed: %v", err)
		}
		return r
	}
	oldMusic := join("Music Club", 0)
	newMusic := join("Music Club", time.Minute)
	coding := join("Coding Club", 2*time.Minute)
	decided := join("Music Club", 3*time.Minute)
	if err := store.MarkDecided(ctx, decided.ID, models.RequestClubJoin, models.RequestRejected, "x@college.edu", time.Now()); err != nil {
		t.Fatalf("MarkDecided failed: %v", err)
	}
	if _, err := store.InsertAdmin(ctx, models.AdminRequest{UserID: primitive.NewObjectID(), ClubName: "Music Club"}); err != nil {
		t.Fatalf("InsertAdmin failed: %v", err)
	}

	all, err := store.ListPendingClubJoin(ctx, nil)
	if err != nil {
		t.Fatalf("ListPendingClubJoin(nil) failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != coding.ID || all[2].ID != oldMusic.ID {
		t.Errorf("all pending = %d, want 3 newest first", len(all))
	}

	music := "Music Club"
	scoped, err := store.ListPendingClubJoin(ctx, &music)
	if err != nil {
		t.Fatalf("ListPendingClubJoin(music) failed: %v", err)
	}
	if len(scoped) != 2 || scoped[0].ID != newMusic.ID {
		t.Errorf("scoped = %+v, want 2 music requests newest first", scoped)
	}

	lower := "music club"
	none, _ := store.ListPendingClubJoin(ctx, &lower)
	if len(none) != 0 {
		t.Errorf("case-mismatched scope returned %d requests", len(none))
	}

	admins, err := store.ListPendingAdmin(ctx)
	if err != nil {
		t.Fatalf("ListPendingAdmin failed: %v", err)
	}
	if len(admins) != 1 {
		t.Errorf("admins = %d, want 1", len(admins))
	}
}

func TestStore_MarkDecided(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r, _ := store.InsertClubJoin(ctx, models.ClubJoinRequest{ClubName: "Art Club"})
	at := time.Now().UTC().Truncate(time.Millisecond)

	if err := store.MarkDecided(ctx, r.ID, models.RequestAdmin, models.RequestApproved, "a", at); !errors.Is(err, storeerr.ErrNotFound) {
		t.Errorf("wrong type: err = %v, want ErrNotFound", err)
	}
	if err := store.MarkDecided(ctx, r.ID, models.RequestClubJoin, "maybe", "a", at); err == nil {
		t.Error("expected error for invalid status")
	}

	if err := store.MarkDecided(ctx, r.ID, models.RequestClubJoin, models.RequestApproved, "admin@college.edu", at); err != nil {
		t.Fatalf("MarkDecided failed: %v", err)
	}
	got, _ := store.Get(ctx, r.ID)
	h := got.Header()
	if h.Status != models.RequestApproved || h.ApprovedBy != "admin@college.edu" {
		t.Errorf("header = %+v", h)
	}
	if h.ApprovedAt == nil || !h.ApprovedAt.Equal(at) {
		t.Errorf("approved_at = %v, want %v", h.ApprovedAt, at)
	}
	if h.RejectedBy != "" || h.RejectedAt != nil {
		t.Error("rejection fields should stay empty")
	}

	err := store.MarkDecided(ctx, r.ID, models.RequestClubJoin, models.RequestRejected, "b", at)
	if !errors.Is(err, storeerr.ErrNotPending) {
		t.Errorf("second decision: err = %v, want ErrNotPending", err)
	}

	if err := store.MarkDecided(ctx, primitive.NewObjectID(), models.RequestClubJoin, models.RequestApproved, "a", at); !errors.Is(err, storeerr.ErrNotFound) {
		t.Errorf("missing: err = %v, want ErrNotFound", err)
	}
}
