package login

import "github.com/go-chi/chi/v5"

// Routes serves the sign-in form. It is mounted outside the signed-in group
// so anonymous visitors can reach it.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleLoginPost)
	return r
}
