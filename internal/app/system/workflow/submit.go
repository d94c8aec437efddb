package workflow

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/clubhub/internal/app/system/identity"
	"github.com/dalemusser/clubhub/internal/app/system/inputval"
	"github.com/dalemusser/clubhub/internal/app/system/normalize"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ClubJoinInput is a student's join request as submitted.
type ClubJoinInput struct {
	StudentName  string `form:"student_name" validate:"required,max=200"`
	StudentEmail string `form:"student_email" validate:"required,email"`
	StudentYear  string `form:"student_year" validate:"required,max=50"`
	StudentDept  string `form:"student_dept" validate:"required,max=200"`
	ClubName     string `form:"club_name" validate:"required,max=200"`
	JoinReason   string `form:"join_reason" validate:"required,max=2000"`
}

func (in *ClubJoinInput) clean() {
	in.StudentName = normalize.Name(in.StudentName)
	in.StudentEmail = normalize.Email(in.StudentEmail)
	in.StudentYear = normalize.Text(htmlsanitize.StripTags(in.StudentYear))
	in.StudentDept = normalize.Text(htmlsanitize.StripTags(in.StudentDept))
	in.ClubName = strings.TrimSpace(in.ClubName)
	in.JoinReason = htmlsanitize.StripTags(in.JoinReason)
}

// AdminApplication is an application to administer a club.
type AdminApplication struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Name     string `form:"name" validate:"required,max=200"`
	Phone    string `form:"phone" validate:"required,max=50"`
	ClubName string `form:"club_name" validate:"required,max=200"`
	Reason   string `form:"reason" validate:"required,max=2000"`
}

func (in *AdminApplication) clean() {
	in.Email = normalize.Email(in.Email)
	in.Name = normalize.Name(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.ClubName = strings.TrimSpace(in.ClubName)
	in.Reason = htmlsanitize.StripTags(in.Reason)
}

func validate(v interface{}) error {
	err := inputval.Validate(v)
	if err == nil {
		return nil
	}
	var fields inputval.Errors
	if errors.As(err, &fields) {
		return &InputError{Fields: fields}
	}
	return err
}

/*─────────────────────────────────────────────────────────────────────────────*
| SubmitClubJoin                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SubmitClubJoin records a pending join request. Anyone may submit, and the
// same student may submit more than once.
func (e *Engine) SubmitClubJoin(ctx context.Context, in ClubJoinInput) (Result, error) {
	o := e.begin("submit_club_join")
	in.clean()
	if err := validate(in); err != nil {
		return e.finish(o, err)
	}

	ctx, cancel := mediumCtx(ctx)
	defer cancel()

	req, err := e.requests.InsertClubJoin(ctx, models.ClubJoinRequest{
		RequestHeader: models.RequestHeader{Timestamp: e.now().UTC()},
		StudentName:   in.StudentName,
		StudentEmail:  in.StudentEmail,
		StudentYear:   in.StudentYear,
		StudentDept:   in.StudentDept,
		ClubName:      in.ClubName,
		JoinReason:    in.JoinReason,
	})
	if err != nil {
		return e.finish(o, storeerr.Write("requests.insert_club_join", err))
	}

	o.result.RequestID = req.ID
	o.log.Info("club join submitted", zap.String("request_id", req.ID.Hex()), zap.String("club", req.ClubName))
	e.audit.ClubJoinSubmitted(ctx, req.ID, req.ClubName, req.StudentEmail)
	return e.finish(o, nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SubmitAdminRequest                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// SubmitAdminRequest creates an identity account, a pending club_admin
// profile keyed by the account id and a pending admin request, then signs
// the submitting browser out.
//
// Account rejections come back as *identity.AuthError. If the profile or the
// request cannot be written the account is left without them; that is
// reported as an OrphanedAccount inconsistency alongside the store error.
func (e *Engine) SubmitAdminRequest(ctx context.Context, browser SignOuter, in AdminApplication) (Result, error) {
	o := e.begin("submit_admin_request")
	in.clean()
	if err := validate(in); err != nil {
		return e.finish(o, err)
	}

	ctx, cancel := longCtx(ctx)
	defer cancel()

	// 1. account
	acct, err := e.accounts.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		var ae *identity.AuthError
		if !errors.As(err, &ae) {
			err = storeerr.Write("accounts.create", err)
		}
		return e.finish(o, err)
	}
	if browser != nil {
		defer browser.SignOut(ctx)
	}

	uid, err := primitive.ObjectIDFromHex(acct.UID)
	if err != nil {
		return e.finish(o, storeerr.Write("accounts.create", err))
	}

	// 2. profile, 3. request
	now := e.now().UTC()
	var reqID primitive.ObjectID
	var failedStep string
	err = e.txn.Run(ctx, func(ctx context.Context) error {
		failedStep = "users.create"
		if err := e.users.Create(ctx, models.User{
			ID:        uid,
			Email:     in.Email,
			Name:      in.Name,
			Phone:     in.Phone,
			Role:      models.RoleClubAdmin,
			ClubName:  in.ClubName,
			Status:    models.UserPending,
			Reason:    in.Reason,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		failedStep = "requests.insert_admin"
		req, err := e.requests.InsertAdmin(ctx, models.AdminRequest{
			RequestHeader: models.RequestHeader{Timestamp: now},
			UserID:        uid,
			Name:          in.Name,
			Email:         in.Email,
			Phone:         in.Phone,
			ClubName:      in.ClubName,
			Reason:        in.Reason,
		})
		if err != nil {
			return err
		}
		reqID = req.ID
		return nil
	})
	if err != nil {
		e.report(ctx, o, Inconsistency{
			Kind:   OrphanedAccount,
			UserID: &uid,
			Club:   in.ClubName,
			Detail: failedStep + ": " + err.Error(),
		})
		return e.finish(o, storeerr.Write(failedStep, err))
	}

	o.result.RequestID = reqID
	o.log.Info("admin request submitted",
		zap.String("request_id", reqID.Hex()),
		zap.String("user_id", uid.Hex()),
		zap.String("club", in.ClubName))
	e.audit.AdminRequestSubmitted(ctx, reqID, uid, in.ClubName, in.Email)
	return e.finish(o, nil)
}
