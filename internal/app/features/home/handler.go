package home

import (
	"context"
	"net/http"
	"time"

	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	eventstore "github.com/dalemusser/clubhub/internal/app/store/events"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/clubhub/internal/app/system/viewdata"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Landing page limits.
const (
	previewClubs  = 6
	previewEvents = 3
)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		Log: logger,
	}
}

type homeData struct {
	viewdata.BaseVM
	Clubs       []models.Club
	MoreClubs   bool
	ClubsError  string
	Events      []models.Event
	MoreEvents  bool
	EventsError string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeRoot shows a preview of clubs and the next few events. A failed read
// shows an inline message rather than an error page.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := homeData{BaseVM: viewdata.NewBaseVM(r, "Welcome", "/")}

	clubs, err := clubstore.New(h.DB).List(ctx)
	if err != nil {
		h.Log.Error("home: list clubs", zap.Error(err))
		data.ClubsError = "Failed to load clubs. Please refresh the page."
	} else {
		data.Clubs, data.MoreClubs = firstClubs(clubs, previewClubs)
	}

	events, err := eventstore.New(h.DB).ListUpcoming(ctx, time.Now())
	if err != nil {
		h.Log.Error("home: list upcoming events", zap.Error(err))
		data.EventsError = "Error loading events. Please refresh the page."
	} else {
		data.Events, data.MoreEvents = firstEvents(events, previewEvents)
	}

	templates.Render(w, r, "home", data)
}

func firstClubs(all []models.Club, n int) ([]models.Club, bool) {
	if len(all) <= n {
		return all, false
	}
	return all[:n], true
}

func firstEvents(all []models.Event, n int) ([]models.Event, bool) {
	if len(all) <= n {
		return all, false
	}
	return all[:n], true
}
