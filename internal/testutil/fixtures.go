package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	accountstore "github.com/dalemusser/clubhub/internal/app/store/accounts"
	eventstore "github.com/dalemusser/clubhub/internal/app/store/events"
	requeststore "github.com/dalemusser/clubhub/internal/app/store/requests"
	userstore "github.com/dalemusser/clubhub/internal/app/store/users"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateClub inserts a club with the given member count.
func (f *Fixtures) CreateClub(ctx context.Context, name string, members int64) models.Club {
	f.t.Helper()

	c := models.Club{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: name + " description",
		Incharge:    "Dr. Test",
		Members:     members,
		Activities:  "Weekly meetups",
		Contact:     "club@test.edu",
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("clubs").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("CreateClub(%q): %v", name, err)
	}
	return c
}

// CreateAccount inserts an identity account with the given password.
func (f *Fixtures) CreateAccount(ctx context.Context, email, password string) models.Account {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	a, err := accountstore.New(f.db).Create(ctx, email, string(hash))
	if err != nil {
		f.t.Fatalf("CreateAccount(%q): %v", email, err)
	}
	return a
}

// CreateUser inserts a profile keyed by id.
func (f *Fixtures) CreateUser(ctx context.Context, id primitive.ObjectID, name, email, role, club, status string) models.User {
	f.t.Helper()

	u := models.User{
		ID:       id,
		Email:    email,
		Name:     name,
		Phone:    "555-0100",
		Role:     role,
		ClubName: club,
		Status:   status,
	}
	if err := userstore.New(f.db).Create(ctx, u); err != nil {
		f.t.Fatalf("CreateUser(%q): %v", email, err)
	}
	return u
}

// CreateSignInUser creates an account and a profile for it, so the pair can
// sign in through the identity provider when status is approved.
func (f *Fixtures) CreateSignInUser(ctx context.Context, email, password, role, club, status string) models.User {
	f.t.Helper()
	a := f.CreateAccount(ctx, email, password)
	return f.CreateUser(ctx, a.ID, "Test "+role, email, role, club, status)
}

// CreateClubJoinRequest inserts a pending club-join request.
func (f *Fixtures) CreateClubJoinRequest(ctx context.Context, club, studentEmail string) models.ClubJoinRequest {
	f.t.Helper()

	r, err := requeststore.New(f.db).InsertClubJoin(ctx, models.ClubJoinRequest{
		StudentName:  "Test Student",
		StudentEmail: studentEmail,
		StudentYear:  "2nd Year",
		StudentDept:  "Computer Science",
		ClubName:     club,
		JoinReason:   "I like it",
	})
	if err != nil {
		f.t.Fatalf("CreateClubJoinRequest(%q): %v", club, err)
	}
	return r
}

// CreateAdminRequest inserts a pending admin request for u.
func (f *Fixtures) CreateAdminRequest(ctx context.Context, u models.User) models.AdminRequest {
	f.t.Helper()

	r, err := requeststore.New(f.db).InsertAdmin(ctx, models.AdminRequest{
		UserID:   u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		ClubName: u.ClubName,
		Reason:   "I run it",
	})
	if err != nil {
		f.t.Fatalf("CreateAdminRequest(%q): %v", u.Email, err)
	}
	return r
}

// CreateEvent inserts an event for club on date.
func (f *Fixtures) CreateEvent(ctx context.Context, club, title string, date time.Time) models.Event {
	f.t.Helper()

	e, err := eventstore.New(f.db).Create(ctx, models.Event{
		Title:       title,
		Club:        club,
		Type:        models.EventWorkshop,
		Date:        models.NewEventDate(date),
		Time:        "10:00 AM",
		Venue:       "Main Hall",
		Description: title + " description",
		PostedBy:    "admin@test.edu",
	})
	if err != nil {
		f.t.Fatalf("CreateEvent(%q): %v", title, err)
	}
	return e
}
