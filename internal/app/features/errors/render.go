// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/clubhub/internal/app/system/auth"
)

// RenderUnauthorized shows a "sign in required" page that links to the
// login form. If backURL is empty it returns to the current page after
// sign-in.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = auth.LoginURL(r)
	}
	render(w, r, http.StatusUnauthorized, "Sign in required", "Please login to access this section.", backURL)
}

// RenderForbidden shows an access error page with msg. An empty backURL
// resolves a safe back URL with "/" as the fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "You don't have permission to view this page."
	}
	render(w, r, http.StatusForbidden, "Access denied", msg, backURL)
}
