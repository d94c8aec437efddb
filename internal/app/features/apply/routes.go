// internal/app/features/apply/routes.go
package apply

import "github.com/go-chi/chi/v5"

// Routes serves the club-admin application form. It is public; a signed-in
// visitor who submits is signed out.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeForm)
	r.Post("/", h.HandleSubmit)
	return r
}
