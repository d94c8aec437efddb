package workflow

import (
	"context"

	"github.com/dalemusser/clubhub/internal/app/policy/clubpolicy"
	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListPendingAdminRequests returns pending admin applications, newest first.
// Only a super admin may list them.
func (e *Engine) ListPendingAdminRequests(ctx context.Context, actor *auth.Session) ([]models.AdminRequest, error) {
	if !clubpolicy.CanDecideAdminRequest(actor) {
		return nil, ErrForbidden
	}
	ctx, cancel := mediumCtx(ctx)
	defer cancel()

	out, err := e.requests.ListPendingAdmin(ctx)
	if err != nil {
		return nil, storeerr.Read("requests.list_pending_admin", err)
	}
	return out, nil
}

// ListPendingClubJoinRequests returns pending join requests visible to
// actor, newest first. A club admin only ever sees its own club.
func (e *Engine) ListPendingClubJoinRequests(ctx context.Context, actor *auth.Session) ([]models.ClubJoinRequest, error) {
	scope, ok := clubpolicy.ClubRequestScope(actor)
	if !ok {
		return nil, ErrForbidden
	}
	ctx, cancel := mediumCtx(ctx)
	defer cancel()

	out, err := e.requests.ListPendingClubJoin(ctx, scope)
	if err != nil {
		return nil, storeerr.Read("requests.list_pending_club_join", err)
	}
	return out, nil
}

// PendingAdminRequest returns one pending admin application for a confirm
// step. Only a super admin may see it.
func (e *Engine) PendingAdminRequest(ctx context.Context, actor *auth.Session, requestID primitive.ObjectID) (*models.AdminRequest, error) {
	if !clubpolicy.CanDecideAdminRequest(actor) {
		return nil, ErrForbidden
	}
	ctx, cancel := mediumCtx(ctx)
	defer cancel()

	return e.loadAdmin(ctx, requestID, primitive.NilObjectID)
}

// PendingClubJoin returns one pending join request actor may decide. A club
// admin asking for another club's request gets ErrForbidden, whether or not
// it is still pending.
func (e *Engine) PendingClubJoin(ctx context.Context, actor *auth.Session, requestID primitive.ObjectID) (*models.ClubJoinRequest, error) {
	if _, ok := clubpolicy.ClubRequestScope(actor); !ok {
		return nil, ErrForbidden
	}
	ctx, cancel := mediumCtx(ctx)
	defer cancel()

	cj, err := e.findClubJoin(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !clubpolicy.CanDecideClubRequest(actor, cj.ClubName) {
		return nil, ErrForbidden
	}
	if !cj.IsPending() {
		return nil, ErrAlreadyDecided
	}
	return cj, nil
}
