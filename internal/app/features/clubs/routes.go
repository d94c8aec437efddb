// internal/app/features/clubs/routes.go
package clubs

import "github.com/go-chi/chi/v5"

// Routes serves the public club directory.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
