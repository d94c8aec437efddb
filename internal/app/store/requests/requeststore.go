// internal/app/store/requests/requeststore.go
package requeststore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("requests")}
}

func stampNew(h *models.RequestHeader, typ string) {
	h.ID = primitive.NewObjectID()
	h.Type = typ
	h.Status = models.RequestPending
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now().UTC()
	}
	h.ApprovedBy, h.ApprovedAt, h.RejectedBy, h.RejectedAt = "", nil, "", nil
}

// InsertClubJoin stores a new pending club-join request.
func (s *Store) InsertClubJoin(ctx context.Context, r models.ClubJoinRequest) (models.ClubJoinRequest, error) {
	stampNew(&r.RequestHeader, models.RequestClubJoin)
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.ClubJoinRequest{}, storeerr.Translate(err)
	}
	return r, nil
}

// InsertAdmin stores a new pending admin request.
func (s *Store) InsertAdmin(ctx context.Context, r models.AdminRequest) (models.AdminRequest, error) {
	if r.UserID.IsZero() {
		return models.AdminRequest{}, errors.New("admin request requires user_id")
	}
	stampNew(&r.RequestHeader, models.RequestAdmin)
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.AdminRequest{}, storeerr.Translate(err)
	}
	return r, nil
}

// Get loads a request of either variant.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.Request, error) {
	raw, err := s.c.FindOne(ctx, bson.M{"_id": id}).Raw()
	if err != nil {
		return nil, storeerr.Translate(err)
	}
	return models.DecodeRequest(raw)
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})

// ListPendingAdmin returns pending admin requests, newest first.
func (s *Store) ListPendingAdmin(ctx context.Context) ([]models.AdminRequest, error) {
	cur, err := s.c.Find(ctx, bson.M{"type": models.RequestAdmin, "status": models.RequestPending}, newestFirst)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeAll[models.AdminRequest](ctx, cur)
}

// ListPendingClubJoin returns pending club-join requests, newest first.
// A nil club lists every club; otherwise the match on club_name is exact.
func (s *Store) ListPendingClubJoin(ctx context.Context, club *string) ([]models.ClubJoinRequest, error) {
	filter := bson.M{"type": models.RequestClubJoin, "status": models.RequestPending}
	if club != nil {
		filter["club_name"] = *club
	}
	cur, err := s.c.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeAll[models.ClubJoinRequest](ctx, cur)
}

// decodeAll runs every document through models.DecodeRequest and fails on
// any that is not a *T.
func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	var out []T
	for cur.Next(ctx) {
		req, err := models.DecodeRequest(cur.Current)
		if err != nil {
			return nil, err
		}
		v, ok := any(req).(*T)
		if !ok {
			return nil, fmt.Errorf("%w: got %T, want *%T", models.ErrUnknownRequestType, req, *new(T))
		}
		out = append(out, *v)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkDecided moves a pending request of type typ to approved or rejected,
// recording who decided and when. The update only matches while the request
// is still pending, so two concurrent decisions cannot both succeed.
//
// Returns storeerr.ErrNotFound when no request of that type exists and
// storeerr.ErrNotPending when it was already decided.
func (s *Store) MarkDecided(ctx context.Context, id primitive.ObjectID, typ, status, by string, at time.Time) error {
	set := bson.M{"status": status}
	switch status {
	case models.RequestApproved:
		set["approved_by"], set["approved_at"] = by, at.UTC()
	case models.RequestRejected:
		set["rejected_by"], set["rejected_at"] = by, at.UTC()
	default:
		return fmt.Errorf("invalid decision status %q", status)
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "type": typ, "status": models.RequestPending},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id, "type": typ})
	if err != nil {
		return err
	}
	if n == 0 {
		return storeerr.ErrNotFound
	}
	return storeerr.ErrNotPending
}
