// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var errNoDate = errors.New("event date is required")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// Create inserts an event and returns it with its id and created_at set.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	if e.Date.IsZero() {
		return models.Event{}, errNoDate
	}
	e.ID = primitive.NewObjectID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, storeerr.Translate(err)
	}
	return e, nil
}

func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.Event{}, storeerr.Translate(err)
	}
	return e, nil
}

// ListUpcoming returns events dated on or after the calendar day of now,
// earliest first. Older documents may hold the date as a string, so the
// filter runs after decoding. Documents whose date cannot be read are
// logged and skipped.
func (s *Store) ListUpcoming(ctx context.Context, now time.Time) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Event
	for cur.Next(ctx) {
		var e models.Event
		if err := cur.Decode(&e); err != nil {
			zap.L().Warn("skipping unreadable event",
				zap.Any("id", cur.Current.Lookup("_id")),
				zap.Error(err))
			continue
		}
		if e.Date.OnOrAfter(now) {
			out = append(out, e)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Date.Day(), out[j].Date.Day()
		if di.Equal(dj) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return di.Before(dj)
	})
	return out, nil
}
