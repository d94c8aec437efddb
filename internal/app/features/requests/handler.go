// internal/app/features/requests/handler.go
package requests

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/clubhub/internal/app/features/errors"
	"github.com/dalemusser/clubhub/internal/app/policy/clubpolicy"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/clubhub/internal/app/system/viewdata"
	"github.com/dalemusser/clubhub/internal/app/system/workflow"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Tabs of the management view.
const (
	TabClub  = "club"
	TabAdmin = "admin"
)

const loadFailedMessage = "Error loading requests."

type Handler struct {
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Engine *workflow.Engine
}

func NewHandler(engine *workflow.Engine, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:    logger,
		ErrLog: errLog,
		Engine: engine,
	}
}

type listData struct {
	viewdata.BaseVM
	Tab           string
	ShowAdminTab  bool
	ScopeClub     string
	AdminRequests []models.AdminRequest
	ClubRequests  []models.ClubJoinRequest
	Error         string
	Notice        string
	NoticeIsError bool
}

// tabFor picks the tab to show. The club tab is the default, and the admin
// tab falls back to it for sessions that cannot manage admin requests.
func tabFor(requested string, can clubpolicy.Capabilities) string {
	if requested == TabAdmin && can.ManageAdminRequests {
		return TabAdmin
	}
	return TabClub
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /requests?tab=club|admin                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeList shows pending requests the session may decide.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	s, _ := auth.CurrentSession(r)
	if clubpolicy.CanReach(s, clubpolicy.SectionClubRequests) != clubpolicy.Allowed {
		uierrors.RenderForbidden(w, r, "Only club admins can manage requests.", "/")
		return
	}
	can := clubpolicy.For(s)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := listData{
		BaseVM:       viewdata.NewBaseVM(r, "Manage Requests", "/"),
		Tab:          tabFor(query.Get(r, "tab"), can),
		ShowAdminTab: can.ManageAdminRequests,
	}
	if can.ClubScope != nil {
		data.ScopeClub = *can.ClubScope
	}
	if n, ok := notices[query.Get(r, "msg")]; ok {
		data.Notice, data.NoticeIsError = n.text, n.isError
	}

	var err error
	switch data.Tab {
	case TabAdmin:
		data.AdminRequests, err = h.Engine.ListPendingAdminRequests(ctx, s)
	default:
		data.ClubRequests, err = h.Engine.ListPendingClubJoinRequests(ctx, s)
	}
	if err != nil {
		h.Log.Error("requests: list pending", zap.String("tab", data.Tab), zap.Error(err))
		data.Error = loadFailedMessage
	}

	templates.Render(w, r, "requests_list", data)
}
