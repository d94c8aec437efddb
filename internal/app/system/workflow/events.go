package workflow

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/clubhub/internal/app/policy/clubpolicy"
	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/clubhub/internal/app/system/inputval"
	"github.com/dalemusser/clubhub/internal/app/system/normalize"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.uber.org/zap"
)

// EventInput is an event as posted. Date accepts any layout
// models.ParseEventDate does.
type EventInput struct {
	Title       string `form:"title" validate:"required,max=200"`
	Club        string `form:"club" validate:"required,max=200"`
	Type        string `form:"type" validate:"required,oneof=Hackathon Workshop Competition Seminar Session Meetup"`
	Date        string `form:"date" validate:"required"`
	Time        string `form:"time" validate:"max=50"`
	Venue       string `form:"venue" validate:"required,max=200"`
	Description string `form:"description" validate:"required,max=4000"`
	RegLink     string `form:"reg_link" validate:"omitempty,max=500"`
}

// PostEvent stores an event for a club. A club admin may only post for its
// own club; a super admin may post for any club that exists.
func (e *Engine) PostEvent(ctx context.Context, actor *auth.Session, in EventInput) (models.Event, error) {
	o := e.begin("post_event")

	in.Title = normalize.Text(htmlsanitize.StripTags(in.Title))
	in.Club = strings.TrimSpace(in.Club)
	in.Venue = normalize.Text(htmlsanitize.StripTags(in.Venue))
	in.Time = strings.TrimSpace(in.Time)
	in.Description = htmlsanitize.StripTags(in.Description)
	in.RegLink = strings.TrimSpace(in.RegLink)

	if f := clubpolicy.For(actor); f.EventClub != "" && in.Club == "" {
		in.Club = f.EventClub
	}
	if !clubpolicy.CanPostEventFor(actor, in.Club) {
		_, err := e.finish(o, ErrForbidden)
		return models.Event{}, err
	}
	if err := validate(in); err != nil {
		_, err = e.finish(o, err)
		return models.Event{}, err
	}
	if in.RegLink != "" && !inputval.IsValidHTTPURL(in.RegLink) {
		_, err := e.finish(o, invalid("reg_link", "Registration link must be a valid URL."))
		return models.Event{}, err
	}
	date, err := models.ParseEventDate(in.Date)
	if err != nil {
		_, err = e.finish(o, invalid("date", "Enter a valid date."))
		return models.Event{}, err
	}

	ctx, cancel := mediumCtx(ctx)
	defer cancel()

	if _, err := e.clubs.GetByName(ctx, in.Club); errors.Is(err, storeerr.ErrNotFound) {
		_, err = e.finish(o, invalid("club", "Select an existing club."))
		return models.Event{}, err
	} else if err != nil {
		_, err = e.finish(o, storeerr.Read("clubs.get_by_name", err))
		return models.Event{}, err
	}

	ev, err := e.events.Create(ctx, models.Event{
		Title:       in.Title,
		Club:        in.Club,
		Type:        in.Type,
		Date:        date,
		Time:        in.Time,
		Venue:       in.Venue,
		Description: in.Description,
		RegLink:     in.RegLink,
		PostedBy:    actor.Email,
		CreatedAt:   e.now().UTC(),
	})
	if err != nil {
		_, err = e.finish(o, storeerr.Write("events.create", err))
		return models.Event{}, err
	}

	o.log.Info("event posted", zap.String("event_id", ev.ID.Hex()), zap.String("club", ev.Club))
	e.audit.EventPosted(ctx, ev.ID, ev.Club, ev.Title, actor.Email)
	_, _ = e.finish(o, nil)
	return ev, nil
}
