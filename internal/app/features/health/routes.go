package health

import "github.com/go-chi/chi/v5"

// Routes returns the /health subrouter. HEAD is answered for load-balancer
// probes that do not read a body.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	r.Head("/", h.Serve)
	return r
}
