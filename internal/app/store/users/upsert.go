package userstore

import (
	"context"
	"time"

	"github.com/dalemusser/clubhub/internal/app/system/normalize"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpsertSuperAdmin makes the profile with the given id an approved super
// admin, creating it if needed. Name is only set on insert.
func (s *Store) UpsertSuperAdmin(ctx context.Context, id primitive.ObjectID, email, name string) (created bool, err error) {
	now := time.Now().UTC()
	if name = normalize.Name(name); name == "" {
		name = "Super Admin"
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{
				"email":      normalize.Email(email),
				"role":       models.RoleSuperAdmin,
				"status":     models.UserApproved,
				"updated_at": now,
			},
			"$unset": bson.M{"club_name": ""},
			"$setOnInsert": bson.M{
				"name":       name,
				"created_at": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}
