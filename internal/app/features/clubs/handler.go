// internal/app/features/clubs/handler.go
package clubs

import (
	"context"
	"net/http"

	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/clubhub/internal/app/system/viewdata"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

type listData struct {
	viewdata.BaseVM
	Clubs        []models.Club
	TotalMembers int64
	Error        string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /clubs                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeList shows every club ordered by name.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := listData{BaseVM: viewdata.NewBaseVM(r, "Clubs", "/")}

	list, err := clubstore.New(h.DB).List(ctx)
	if err != nil {
		h.Log.Error("clubs: list", zap.Error(err))
		data.Error = "Failed to load clubs. Please refresh the page."
	} else {
		data.Clubs = list
		for _, c := range list {
			data.TotalMembers += c.Members
		}
	}

	templates.Render(w, r, "clubs_list", data)
}
