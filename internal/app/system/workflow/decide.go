package workflow

import (
	"context"
	"errors"

	"github.com/dalemusser/clubhub/internal/app/policy/clubpolicy"
	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// loadAdmin fetches a pending admin request for userID.
func (e *Engine) loadAdmin(ctx context.Context, requestID, userID primitive.ObjectID) (*models.AdminRequest, error) {
	r, err := e.requests.Get(ctx, requestID)
	if errors.Is(err, storeerr.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, storeerr.Read("requests.get", err)
	}
	ar, ok := r.(*models.AdminRequest)
	if !ok {
		return nil, ErrWrongRequestType
	}
	if !userID.IsZero() && ar.UserID != userID {
		return nil, invalid("user_id", "User does not match the request.")
	}
	if !ar.IsPending() {
		return nil, ErrAlreadyDecided
	}
	return ar, nil
}

// loadClubJoin fetches a pending club-join request.
func (e *Engine) loadClubJoin(ctx context.Context, requestID primitive.ObjectID) (*models.ClubJoinRequest, error) {
	cj, err := e.findClubJoin(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !cj.IsPending() {
		return nil, ErrAlreadyDecided
	}
	return cj, nil
}

// findClubJoin loads a join request whatever its status.
func (e *Engine) findClubJoin(ctx context.Context, requestID primitive.ObjectID) (*models.ClubJoinRequest, error) {
	r, err := e.requests.Get(ctx, requestID)
	if errors.Is(err, storeerr.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, storeerr.Read("requests.get", err)
	}
	cj, ok := r.(*models.ClubJoinRequest)
	if !ok {
		return nil, ErrWrongRequestType
	}
	return cj, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Admin requests                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// ApproveAdminRequest approves the profile, then the request. A zero userID
// takes the user from the request.
func (e *Engine) ApproveAdminRequest(ctx context.Context, actor *auth.Session, requestID, userID primitive.ObjectID) (Result, error) {
	o := e.begin("approve_admin_request")
	o.result.RequestID = requestID
	if !clubpolicy.CanDecideAdminRequest(actor) {
		return e.finish(o, ErrForbidden)
	}

	ctx, cancel := longCtx(ctx)
	defer cancel()

	ar, err := e.loadAdmin(ctx, requestID, userID)
	if err != nil {
		return e.finish(o, err)
	}

	err = e.txn.Run(ctx, func(ctx context.Context) error {
		if err := e.users.SetStatus(ctx, ar.UserID, models.UserApproved); err != nil {
			return storeerr.Write("users.set_status", err)
		}
		return decisionErr("requests.mark_decided",
			e.requests.MarkDecided(ctx, requestID, models.RequestAdmin, models.RequestApproved, actor.Email, e.now()))
	})
	if err != nil {
		return e.finish(o, err)
	}

	o.log.Info("admin request approved",
		zap.String("request_id", requestID.Hex()),
		zap.String("user_id", ar.UserID.Hex()),
		zap.String("club", ar.ClubName),
		zap.String("actor", actor.Email))
	e.audit.AdminRequestDecided(ctx, requestID, ar.UserID, actor.Email, true)
	return e.finish(o, nil)
}

// RejectAdminRequest deletes the profile and marks the request rejected.
// The identity account is kept, so a later sign-in finds no profile.
func (e *Engine) RejectAdminRequest(ctx context.Context, actor *auth.Session, requestID, userID primitive.ObjectID) (Result, error) {
	o := e.begin("reject_admin_request")
	o.result.RequestID = requestID
	if !clubpolicy.CanDecideAdminRequest(actor) {
		return e.finish(o, ErrForbidden)
	}

	ctx, cancel := longCtx(ctx)
	defer cancel()

	ar, err := e.loadAdmin(ctx, requestID, userID)
	if err != nil {
		return e.finish(o, err)
	}

	err = e.txn.Run(ctx, func(ctx context.Context) error {
		err := e.users.Delete(ctx, ar.UserID)
		if errors.Is(err, storeerr.ErrNotFound) {
			o.log.Warn("rejected applicant had no profile", zap.String("user_id", ar.UserID.Hex()))
		} else if err != nil {
			return storeerr.Write("users.delete", err)
		}
		return decisionErr("requests.mark_decided",
			e.requests.MarkDecided(ctx, requestID, models.RequestAdmin, models.RequestRejected, actor.Email, e.now()))
	})
	if err != nil {
		return e.finish(o, err)
	}

	o.log.Info("admin request rejected",
		zap.String("request_id", requestID.Hex()),
		zap.String("user_id", ar.UserID.Hex()),
		zap.String("actor", actor.Email))
	e.audit.AdminRequestDecided(ctx, requestID, ar.UserID, actor.Email, false)
	return e.finish(o, nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Club-join requests                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// ApproveClubJoin marks the request approved and adds one member to its
// club. clubName, when given, must match the request. A club that no longer
// exists is reported as a ClubNotFound inconsistency and the approval stands.
func (e *Engine) ApproveClubJoin(ctx context.Context, actor *auth.Session, requestID primitive.ObjectID, clubName string) (Result, error) {
	o := e.begin("approve_club_join")
	o.result.RequestID = requestID
	if actor == nil {
		return e.finish(o, ErrForbidden)
	}

	ctx, cancel := longCtx(ctx)
	defer cancel()

	cj, err := e.loadClubJoin(ctx, requestID)
	if err != nil {
		return e.finish(o, err)
	}
	if clubName != "" && clubName != cj.ClubName {
		return e.finish(o, invalid("club_name", "Club does not match the request."))
	}
	if !clubpolicy.CanDecideClubRequest(actor, cj.ClubName) {
		return e.finish(o, ErrForbidden)
	}

	var missingClub bool
	err = e.txn.Run(ctx, func(ctx context.Context) error {
		missingClub = false
		if err := decisionErr("requests.mark_decided",
			e.requests.MarkDecided(ctx, requestID, models.RequestClubJoin, models.RequestApproved, actor.Email, e.now())); err != nil {
			return err
		}

		if _, err := e.clubs.GetByName(ctx, cj.ClubName); errors.Is(err, storeerr.ErrNotFound) {
			missingClub = true
			return nil
		} else if err != nil {
			return storeerr.Read("clubs.get_by_name", err)
		}

		err := e.clubs.IncrementMembers(ctx, cj.ClubName, 1)
		if errors.Is(err, storeerr.ErrNotFound) {
			missingClub = true
			return nil
		}
		return storeerr.Write("clubs.increment_members", err)
	})
	if err != nil {
		return e.finish(o, err)
	}

	if missingClub {
		e.report(ctx, o, Inconsistency{
			Kind:      ClubNotFound,
			RequestID: &requestID,
			Club:      cj.ClubName,
			Detail:    "approved join request names a club that does not exist; member count not raised",
		})
	}

	o.log.Info("club join approved",
		zap.String("request_id", requestID.Hex()),
		zap.String("club", cj.ClubName),
		zap.String("actor", actor.Email))
	e.audit.ClubJoinDecided(ctx, requestID, cj.ClubName, actor.Email, true)
	return e.finish(o, nil)
}

// RejectClubJoin marks the request rejected. Member counts are untouched.
func (e *Engine) RejectClubJoin(ctx context.Context, actor *auth.Session, requestID primitive.ObjectID) (Result, error) {
	o := e.begin("reject_club_join")
	o.result.RequestID = requestID
	if actor == nil {
		return e.finish(o, ErrForbidden)
	}

	ctx, cancel := mediumCtx(ctx)
	defer cancel()

	cj, err := e.loadClubJoin(ctx, requestID)
	if err != nil {
		return e.finish(o, err)
	}
	if !clubpolicy.CanDecideClubRequest(actor, cj.ClubName) {
		return e.finish(o, ErrForbidden)
	}

	err = decisionErr("requests.mark_decided",
		e.requests.MarkDecided(ctx, requestID, models.RequestClubJoin, models.RequestRejected, actor.Email, e.now()))
	if err != nil {
		return e.finish(o, err)
	}

	o.log.Info("club join rejected",
		zap.String("request_id", requestID.Hex()),
		zap.String("club", cj.ClubName),
		zap.String("actor", actor.Email))
	e.audit.ClubJoinDecided(ctx, requestID, cj.ClubName, actor.Email, false)
	return e.finish(o, nil)
}
