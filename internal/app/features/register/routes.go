// internal/app/features/register/routes.go
package register

import "github.com/go-chi/chi/v5"

// Routes serves the public club-join form.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeForm)
	r.Post("/", h.HandleSubmit)
	return r
}
