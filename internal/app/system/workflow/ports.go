package workflow

import (
	"context"
	"time"

	"github.com/dalemusser/clubhub/internal/app/system/identity"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is the slice of the users store the engine writes.
type UserStore interface {
	Create(ctx context.Context, u models.User) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ClubStore is the slice of the clubs store the engine needs.
type ClubStore interface {
	GetByName(ctx context.Context, name string) (models.Club, error)
	IncrementMembers(ctx context.Context, name string, delta int64) error
}

// RequestStore persists join and admin requests.
type RequestStore interface {
	InsertClubJoin(ctx context.Context, r models.ClubJoinRequest) (models.ClubJoinRequest, error)
	InsertAdmin(ctx context.Context, r models.AdminRequest) (models.AdminRequest, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Request, error)
	ListPendingAdmin(ctx context.Context) ([]models.AdminRequest, error)
	ListPendingClubJoin(ctx context.Context, club *string) ([]models.ClubJoinRequest, error)
	MarkDecided(ctx context.Context, id primitive.ObjectID, typ, status, by string, at time.Time) error
}

// EventStore stores posted events.
type EventStore interface {
	Create(ctx context.Context, e models.Event) (models.Event, error)
}

// Accounts creates identity-provider accounts.
type Accounts interface {
	SignUp(ctx context.Context, email, password string) (identity.Identity, error)
}

// Runner groups the writes of one operation. *txn.Runner implements it.
type Runner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// SignOuter ends the submitting browser's session. *auth.SessionContext
// implements it.
type SignOuter interface {
	SignOut(ctx context.Context)
}

type directRunner struct{}

func (directRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
