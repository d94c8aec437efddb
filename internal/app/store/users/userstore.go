package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/app/system/normalize"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	errBadRole   = errors.New(`role must be "super_admin"|"club_admin"`)
	errBadStatus = errors.New(`status must be "pending"|"approved"`)
	errClubName  = errors.New("club_admin must have club_name")
	errNoID      = errors.New("user id must be the identity account id")
)

// Get loads a user by id. Returns storeerr.ErrNotFound when absent.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, storeerr.Translate(err)
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, storeerr.Translate(err)
	}
	return &u, nil
}

// Create inserts a user keyed by its identity account id after normalizing
// and validating fields.
func (s *Store) Create(ctx context.Context, u models.User) error {
	if u.ID.IsZero() {
		return errNoID
	}
	u.Email = normalize.Email(u.Email)
	u.Name = normalize.Name(u.Name)
	u.Role = normalize.Role(u.Role)
	if u.Status == "" {
		u.Status = models.UserPending
	}

	switch u.Role {
	case models.RoleSuperAdmin, models.RoleClubAdmin:
	default:
		return errBadRole
	}
	switch u.Status {
	case models.UserPending, models.UserApproved:
	default:
		return errBadStatus
	}
	if u.Role == models.RoleClubAdmin && u.ClubName == "" {
		return errClubName
	}

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	_, err := s.c.InsertOne(ctx, u)
	return storeerr.Translate(err)
}

// SetStatus changes a user's approval status.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	switch status {
	case models.UserPending, models.UserApproved:
	default:
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return storeerr.ErrNotFound
	}
	return nil
}

// Delete removes a user profile. The identity account is untouched.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storeerr.ErrNotFound
	}
	return nil
}
