// internal/app/features/events/post.go
package events

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/clubhub/internal/app/features/errors"
	"github.com/dalemusser/clubhub/internal/app/policy/clubpolicy"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/inputval"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/clubhub/internal/app/system/viewdata"
	"github.com/dalemusser/clubhub/internal/app/system/workflow"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const (
	postedMessage = "Event posted successfully!"
	failedMessage = "Failed to post event. Please try again."
)

type formData struct {
	viewdata.BaseVM

	// FixedClub is set for club admins; the club select is hidden.
	FixedClub  string
	ClubSelect viewdata.ClubSelect
	Types      []string

	In      workflow.EventInput
	Errors  inputval.Errors
	Error   string
	Success string
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, s *auth.Session, in workflow.EventInput, fields inputval.Errors, msg, success string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	fixed := clubpolicy.For(s).EventClub
	names, err := h.clubNames(ctx, fixed)
	if err != nil {
		h.Log.Warn("events: list club names", zap.Error(err))
	}

	templates.Render(w, r, "events_new", formData{
		BaseVM:     viewdata.NewBaseVM(r, "Post Event", "/events"),
		FixedClub:  fixed,
		ClubSelect: viewdata.ClubSelect{Clubs: names, Selected: in.Club},
		Types:      models.EventTypes,
		In:         in,
		Errors:     fields,
		Error:      msg,
		Success:    success,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /events/new                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeNew shows the posting form to sessions that may post events.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	s, _ := auth.CurrentSession(r)
	if clubpolicy.CanReach(s, clubpolicy.SectionPostEvent) != clubpolicy.Allowed {
		uierrors.RenderForbidden(w, r, "Only club admins can post events.", "/events")
		return
	}

	success := ""
	if query.Get(r, "posted") == "1" {
		success = postedMessage
	}
	h.renderForm(w, r, s, workflow.EventInput{}, nil, "", success)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /events                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// HandlePost stores a new event and redirects back to an empty form.
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	s, _ := auth.CurrentSession(r)
	if clubpolicy.CanReach(s, clubpolicy.SectionPostEvent) != clubpolicy.Allowed {
		uierrors.RenderForbidden(w, r, "Only club admins can post events.", "/events")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/events/new")
		return
	}

	in := workflow.EventInput{
		Title:       r.FormValue("title"),
		Club:        r.FormValue("club"),
		Type:        r.FormValue("type"),
		Date:        r.FormValue("date"),
		Time:        r.FormValue("time"),
		Venue:       r.FormValue("venue"),
		Description: r.FormValue("description"),
		RegLink:     r.FormValue("reg_link"),
	}

	ev, err := h.Engine.PostEvent(r.Context(), s, in)
	if err != nil {
		var ie *workflow.InputError
		switch {
		case errors.Is(err, workflow.ErrForbidden):
			uierrors.RenderForbidden(w, r, "You can only post events for your own club.", "/events")
		case errors.As(err, &ie):
			h.renderForm(w, r, s, in, ie.Fields, ie.Fields.First("title", "club", "type", "date", "venue", "description", "reg_link"), "")
		default:
			h.Log.Error("events: post failed", zap.String("club", in.Club), zap.Error(err))
			h.renderForm(w, r, s, in, nil, failedMessage, "")
		}
		return
	}

	h.Log.Info("event posted", zap.String("event_id", ev.ID.Hex()), zap.String("club", ev.Club), zap.String("by", s.Email))
	http.Redirect(w, r, "/events/new?posted=1", http.StatusSeeOther)
}
