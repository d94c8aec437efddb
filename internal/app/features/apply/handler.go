// internal/app/features/apply/handler.go
package apply

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/clubhub/internal/app/features/errors"
	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/identity"
	"github.com/dalemusser/clubhub/internal/app/system/inputval"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/clubhub/internal/app/system/viewdata"
	"github.com/dalemusser/clubhub/internal/app/system/workflow"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const submittedMessage = "Application submitted successfully! You will receive an email once your account is approved."

var fieldOrder = []string{"name", "email", "password", "phone", "club_name", "reason"}

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Engine     *workflow.Engine
}

func NewHandler(db *mongo.Database, engine *workflow.Engine, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Engine:     engine,
	}
}

type formData struct {
	viewdata.BaseVM
	ClubSelect viewdata.ClubSelect
	MinPass    int
	In         workflow.AdminApplication
	Errors     inputval.Errors
	Error      string
	Success    string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, in workflow.AdminApplication, fields inputval.Errors, msg, success string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	names, err := clubstore.New(h.DB).Names(ctx)
	if err != nil {
		h.Log.Warn("apply: list club names", zap.Error(err))
	}

	in.Password = ""
	templates.Render(w, r, "apply_form", formData{
		BaseVM:     viewdata.NewBaseVM(r, "Become a Club Admin", "/"),
		ClubSelect: viewdata.ClubSelect{Clubs: names, Selected: in.ClubName},
		MinPass:    identity.MinPasswordLength,
		In:         in,
		Errors:     fields,
		Error:      msg,
		Success:    success,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /apply                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	success := ""
	if query.Get(r, "submitted") == "1" {
		success = submittedMessage
	}
	h.render(w, r, workflow.AdminApplication{}, nil, "", success)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /apply                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSubmit creates the applicant's account, a pending profile and a
// pending admin request. The browser ends up signed out either way: the
// account cannot be used until a super admin approves it.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/apply")
		return
	}

	in := workflow.AdminApplication{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Name:     r.FormValue("name"),
		Phone:    r.FormValue("phone"),
		ClubName: r.FormValue("club_name"),
		Reason:   r.FormValue("reason"),
	}

	sc := auth.FromRequest(r)
	res, err := h.Engine.SubmitAdminRequest(r.Context(), sc, in)
	h.SessionMgr.Persist(w, r, sc)

	if err != nil {
		var ie *workflow.InputError
		var ae *identity.AuthError
		switch {
		case errors.As(err, &ie):
			h.render(w, r, in, ie.Fields, ie.Fields.First(fieldOrder...), "")
		case errors.As(err, &ae):
			field := "email"
			if ae.Code == identity.CodeWeakPassword {
				field = "password"
			}
			msg := identity.SignUpMessage(err)
			h.render(w, r, in, inputval.Errors{field: msg}, msg, "")
		default:
			h.Log.Error("apply: submit failed",
				zap.String("op_id", res.OpID),
				zap.Int("inconsistencies", len(res.Inconsistencies)),
				zap.Error(err))
			h.render(w, r, in, nil, identity.SignUpFailedMessage, "")
		}
		return
	}

	h.Log.Info("admin application submitted", zap.String("request_id", res.RequestID.Hex()), zap.String("op_id", res.OpID))
	http.Redirect(w, r, "/apply?submitted=1", http.StatusSeeOther)
}
