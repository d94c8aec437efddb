// internal/app/store/clubs/clubstore.go
package clubstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/app/system/txn"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("clubs")}
}

// List returns every club ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Club, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Club
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Names returns club names in display order, for select lists.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	clubs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(clubs))
	for _, c := range clubs {
		names = append(names, c.Name)
	}
	return names, nil
}

// GetByName matches the exact stored name, so "coding club" does not find
// "Coding Club".
func (s *Store) GetByName(ctx context.Context, name string) (models.Club, error) {
	var c models.Club
	if err := s.c.FindOne(ctx, bson.M{"name": name}).Decode(&c); err != nil {
		return models.Club{}, storeerr.Translate(err)
	}
	return c, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// IncrementMembers atomically adds delta to the member count of the club
// with exactly this name. Returns storeerr.ErrNotFound when no club matches.
func (s *Store) IncrementMembers(ctx context.Context, name string, delta int64) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"name": name}, bson.M{"$inc": bson.M{"members": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return storeerr.ErrNotFound
	}
	return nil
}

// Seed inserts clubs in one batch when the collection is empty and reports
// how many were inserted. The count check and insert run inside a
// transaction when the runner supports it. A unique-name collision means
// another process seeded first and is not an error.
func (s *Store) Seed(ctx context.Context, runner *txn.Runner, clubs []models.Club) (int, error) {
	if len(clubs) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(clubs))
	for _, c := range clubs {
		c.ID = primitive.NewObjectID()
		c.NameCI = text.Fold(c.Name)
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		docs = append(docs, c)
	}

	inserted := 0
	err := runner.Run(ctx, func(ctx context.Context) error {
		inserted = 0
		n, err := s.c.CountDocuments(ctx, bson.M{})
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		res, err := s.c.InsertMany(ctx, docs)
		if err != nil {
			return storeerr.Translate(err)
		}
		inserted = len(res.InsertedIDs)
		return nil
	})
	if errors.Is(err, storeerr.ErrDuplicate) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
