// internal/app/features/requests/routes.go
package requests

import (
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the management view. Only admins reach it; the engine
// applies the finer per-club and per-role checks.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleSuperAdmin, models.RoleClubAdmin))

		pr.Get("/", h.ServeList)

		pr.Get("/admin/{id}/approve", h.serveConfirm(approveAdmin))
		pr.Post("/admin/{id}/approve", h.handleDecision(approveAdmin))
		pr.Get("/admin/{id}/reject", h.serveConfirm(rejectAdmin))
		pr.Post("/admin/{id}/reject", h.handleDecision(rejectAdmin))

		pr.Get("/club/{id}/approve", h.serveConfirm(approveClub))
		pr.Post("/club/{id}/approve", h.handleDecision(approveClub))
		pr.Get("/club/{id}/reject", h.serveConfirm(rejectClub))
		pr.Post("/club/{id}/reject", h.handleDecision(rejectClub))
	})

	return r
}
