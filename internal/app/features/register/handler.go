// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/clubhub/internal/app/features/errors"
	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	"github.com/dalemusser/clubhub/internal/app/system/inputval"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/clubhub/internal/app/system/viewdata"
	"github.com/dalemusser/clubhub/internal/app/system/workflow"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	submittedMessage = "Registration submitted successfully! The club admin will review your request."
	failedMessage    = "Failed to submit registration. Please try again."
)

var years = []string{"1", "2", "3", "4"}

var fieldOrder = []string{"student_name", "student_email", "student_year", "student_dept", "club_name", "join_reason"}

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Engine *workflow.Engine
}

func NewHandler(db *mongo.Database, engine *workflow.Engine, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
		Engine: engine,
	}
}

type formData struct {
	viewdata.BaseVM
	ClubSelect viewdata.ClubSelect
	Years      []string
	In         workflow.ClubJoinInput
	Errors     inputval.Errors
	Error      string
	Success    string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, in workflow.ClubJoinInput, fields inputval.Errors, msg, success string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	names, err := clubstore.New(h.DB).Names(ctx)
	if err != nil {
		h.Log.Warn("register: list club names", zap.Error(err))
	}

	templates.Render(w, r, "register_form", formData{
		BaseVM:     viewdata.NewBaseVM(r, "Join a Club", "/clubs"),
		ClubSelect: viewdata.ClubSelect{Clubs: names, Selected: in.ClubName},
		Years:      years,
		In:         in,
		Errors:     fields,
		Error:      msg,
		Success:    success,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeForm shows the join form. ?club= preselects a club.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	success := ""
	if query.Get(r, "submitted") == "1" {
		success = submittedMessage
	}
	h.render(w, r, workflow.ClubJoinInput{ClubName: query.Get(r, "club")}, nil, "", success)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSubmit records a pending join request. Anyone may submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/register")
		return
	}

	in := workflow.ClubJoinInput{
		StudentName:  r.FormValue("student_name"),
		StudentEmail: r.FormValue("student_email"),
		StudentYear:  r.FormValue("student_year"),
		StudentDept:  r.FormValue("student_dept"),
		ClubName:     r.FormValue("club_name"),
		JoinReason:   r.FormValue("join_reason"),
	}

	res, err := h.Engine.SubmitClubJoin(r.Context(), in)
	if err != nil {
		var ie *workflow.InputError
		if errors.As(err, &ie) {
			h.render(w, r, in, ie.Fields, ie.Fields.First(fieldOrder...), "")
			return
		}
		h.Log.Error("register: submit failed", zap.String("club", in.ClubName), zap.Error(err))
		h.render(w, r, in, nil, failedMessage, "")
		return
	}

	h.Log.Info("club join request submitted", zap.String("request_id", res.RequestID.Hex()), zap.String("op_id", res.OpID))
	http.Redirect(w, r, "/register?submitted=1", http.StatusSeeOther)
}
