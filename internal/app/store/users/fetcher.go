package userstore

import (
	"context"

	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fetcher loads the profile behind an identity on every request so role
// changes, rejections and pending status take effect immediately.
type Fetcher struct {
	store *Store
}

// NewFetcher creates a Fetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{store: New(db)}
}

// LoadProfile returns the profile for uid, or storeerr.ErrNotFound.
// A malformed uid is treated as not found.
func (f *Fetcher) LoadProfile(ctx context.Context, uid string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return nil, storeerr.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	return f.store.Get(ctx, oid)
}
