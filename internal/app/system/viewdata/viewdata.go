// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/clubhub/internal/app/policy/clubpolicy"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the header and page titles.
const SiteName = "ClubHub"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// Session context (from auth.LoadSession)
	IsLoggedIn bool
	Role       string
	RoleLabel  string
	UserName   string
	ClubName   string

	// What the header navigation offers.
	Can clubpolicy.Capabilities

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	s, _ := auth.CurrentSession(r)
	can := clubpolicy.For(s)

	vm := BaseVM{
		SiteName:    SiteName,
		IsLoggedIn:  can.SignedIn,
		RoleLabel:   can.RoleLabel,
		UserName:    can.DisplayName,
		Can:         can,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
	if s != nil {
		vm.Role = s.Role
		vm.ClubName = s.ClubName
	}
	return vm
}

// ClubSelect feeds the shared "club_options" template.
type ClubSelect struct {
	Clubs    []string
	Selected string
}
