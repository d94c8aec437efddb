// internal/app/features/requests/decide.go
package requests

import (
	"errors"
	"net/http"
	"net/url"

	uierrors "github.com/dalemusser/clubhub/internal/app/features/errors"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/viewdata"
	"github.com/dalemusser/clubhub/internal/app/system/workflow"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// action is one of the four decisions the management view offers.
type action struct {
	tab     string // TabAdmin or TabClub
	approve bool
	prompt  string
	done    string // notice key on success
	failed  string // notice key on a store failure
	param   string // form field carried from the list to the engine
}

var (
	approveAdmin = action{TabAdmin, true, "Approve this admin application?", "admin_approved", "failed_approve", "user_id"}
	rejectAdmin  = action{TabAdmin, false, "Reject this admin application? This will delete their account.", "admin_rejected", "failed_reject", "user_id"}
	approveClub  = action{TabClub, true, "Approve this club join request?", "club_approved", "failed_approve", "club_name"}
	rejectClub   = action{TabClub, false, "Reject this club join request?", "club_rejected", "failed_reject", "club_name"}
)

type notice struct {
	text    string
	isError bool
}

// notices are looked up by the msg query parameter, so only these texts can
// ever be shown.
var notices = map[string]notice{
	"admin_approved":  {"Admin application approved! The user can now login.", false},
	"admin_rejected":  {"Admin application rejected. The user account has been removed.", false},
	"club_approved":   {"Club join request approved!", false},
	"club_rejected":   {"Club join request rejected.", false},
	"already_decided": {"This request has already been approved or rejected.", true},
	"not_found":       {"Request not found. It may have been removed.", true},
	"mismatch":        {"The request changed since the list was loaded. Please try again.", true},
	"failed_approve":  {"Failed to approve request. Please try again.", true},
	"failed_reject":   {"Failed to reject request. Please try again.", true},
}

func listURL(tab, msg string) string {
	v := url.Values{"tab": {tab}}
	if msg != "" {
		v.Set("msg", msg)
	}
	return "/requests?" + v.Encode()
}

type confirmData struct {
	viewdata.BaseVM
	Prompt     string
	Action     string
	ParamName  string
	ParamValue string
	Approve    bool
	Summary    string
	CancelURL  string
}

// serveConfirm shows the confirm step. The request is loaded through the
// engine, so the same role and club checks as the decision itself apply
// before any applicant details are shown.
func (h *Handler) serveConfirm(a action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := auth.CurrentSession(r)
		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "bad request id", err, "Invalid request id.", listURL(a.tab, ""))
			return
		}

		var req models.Request
		if a.tab == TabAdmin {
			var ar *models.AdminRequest
			if ar, err = h.Engine.PendingAdminRequest(r.Context(), s, id); err == nil {
				req = ar
			}
		} else {
			var cj *models.ClubJoinRequest
			if cj, err = h.Engine.PendingClubJoin(r.Context(), s, id); err == nil {
				req = cj
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, workflow.ErrForbidden):
			uierrors.RenderForbidden(w, r, "You cannot decide this request.", listURL(a.tab, ""))
			return
		case errors.Is(err, workflow.ErrAlreadyDecided),
			errors.Is(err, workflow.ErrRequestNotFound),
			errors.Is(err, workflow.ErrWrongRequestType):
			http.Redirect(w, r, listURL(a.tab, noticeFor(err, a.failed)), http.StatusSeeOther)
			return
		default:
			h.ErrLog.LogServerError(w, r, "load request failed", err, "Error loading request.", listURL(a.tab, ""))
			return
		}

		templates.Render(w, r, "requests_confirm", confirmData{
			BaseVM:     viewdata.NewBaseVM(r, "Confirm", listURL(a.tab, "")),
			Prompt:     a.prompt,
			Action:     r.URL.Path,
			ParamName:  a.param,
			ParamValue: query.Get(r, a.param),
			Approve:    a.approve,
			Summary:    summarize(req),
			CancelURL:  listURL(a.tab, ""),
		})
	}
}

// noticeFor maps a decision error to its notice key. failed is used for
// anything the user cannot act on.
func noticeFor(err error, failed string) string {
	switch {
	case errors.Is(err, workflow.ErrAlreadyDecided):
		return "already_decided"
	case errors.Is(err, workflow.ErrRequestNotFound), errors.Is(err, workflow.ErrWrongRequestType):
		return "not_found"
	case errors.Is(err, workflow.ErrInvalidInput):
		return "mismatch"
	default:
		return failed
	}
}

func summarize(req models.Request) string {
	switch v := req.(type) {
	case *models.AdminRequest:
		return v.Name + " (" + v.Email + ") for " + v.ClubName
	case *models.ClubJoinRequest:
		return v.StudentName + " (" + v.StudentEmail + ") for " + v.ClubName
	}
	return ""
}

func (h *Handler) handleDecision(a action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := auth.CurrentSession(r)
		if err := r.ParseForm(); err != nil {
			h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", listURL(a.tab, ""))
			return
		}
		if r.FormValue("confirm") != "yes" {
			http.Redirect(w, r, listURL(a.tab, ""), http.StatusSeeOther)
			return
		}

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "bad request id", err, "Invalid request id.", listURL(a.tab, ""))
			return
		}

		var res workflow.Result
		switch {
		case a.tab == TabAdmin:
			var userID primitive.ObjectID
			if v := r.FormValue("user_id"); v != "" {
				if userID, err = primitive.ObjectIDFromHex(v); err != nil {
					h.ErrLog.LogBadRequest(w, r, "bad user id", err, "Invalid user id.", listURL(a.tab, ""))
					return
				}
			}
			if a.approve {
				res, err = h.Engine.ApproveAdminRequest(r.Context(), s, id, userID)
			} else {
				res, err = h.Engine.RejectAdminRequest(r.Context(), s, id, userID)
			}
		case a.approve:
			res, err = h.Engine.ApproveClubJoin(r.Context(), s, id, r.FormValue("club_name"))
		default:
			res, err = h.Engine.RejectClubJoin(r.Context(), s, id)
		}

		msg := a.done
		switch {
		case err == nil:
			if len(res.Inconsistencies) > 0 {
				h.Log.Warn("requests: decision left inconsistencies",
					zap.String("op_id", res.OpID),
					zap.Int("count", len(res.Inconsistencies)))
			}
		case errors.Is(err, workflow.ErrForbidden):
			uierrors.RenderForbidden(w, r, "You cannot decide this request.", listURL(a.tab, ""))
			return
		default:
			msg = noticeFor(err, a.failed)
			if msg == a.failed {
				h.Log.Error("requests: decision failed",
					zap.String("request_id", id.Hex()),
					zap.String("op_id", res.OpID),
					zap.Error(err))
			}
		}

		http.Redirect(w, r, listURL(a.tab, msg), http.StatusSeeOther)
	}
}
