// internal/app/store/accounts/accountstore.go
package accountstore

import (
	"context"
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
	return &Store{c: db.Collection("accounts")}
}

// Create inserts a credential record and returns it with its new id.
// A second account for the same email yields storeerr.ErrDuplicate.
func (s *Store) Create(ctx context.Context, email, passwordHash string) (models.Account, error) {
	a := models.Account{
		ID:           primitive.NewObjectID(),
		Email:        normalize.Email(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Account{}, storeerr.Translate(err)
	}
	return a, nil
}

func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.Account, error) {
	var a models.Account
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return models.Account{}, storeerr.Translate(err)
	}
	return a, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.Account, error) {
	var a models.Account
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&a); err != nil {
		return models.Account{}, storeerr.Translate(err)
	}
	return a, nil
}

// SetDisabled blocks or unblocks sign-in for an account.
func (s *Store) SetDisabled(ctx context.Context, id primitive.ObjectID, disabled bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"disabled": disabled}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return storeerr.ErrNotFound
	}
	return nil
}
