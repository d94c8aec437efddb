// internal/app/features/events/handler.go
package events

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/clubhub/internal/app/features/errors"
	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	eventstore "github.com/dalemusser/clubhub/internal/app/store/events"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/clubhub/internal/app/system/viewdata"
	"github.com/dalemusser/clubhub/internal/app/system/workflow"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

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

type listData struct {
	viewdata.BaseVM
	Events []models.Event
	Error  string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /events                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeList shows events dated today or later, earliest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := listData{BaseVM: viewdata.NewBaseVM(r, "Events", "/")}

	list, err := eventstore.New(h.DB).ListUpcoming(ctx, time.Now())
	if err != nil {
		h.Log.Error("events: list upcoming", zap.Error(err))
		data.Error = "Error loading events. Please refresh the page."
	} else {
		data.Events = list
	}

	templates.Render(w, r, "events_list", data)
}

// clubNames lists the clubs a super admin may choose from. Club admins post
// for their own club only, so they get no list.
func (h *Handler) clubNames(ctx context.Context, fixed string) ([]string, error) {
	if fixed != "" {
		return nil, nil
	}
	return clubstore.New(h.DB).Names(ctx)
}
