// internal/app/policy/clubpolicy/clubpolicy.go
package clubpolicy

import (
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/domain/models"
)

// Section is a management area of the site.
type Section string

const (
	SectionAdminRequests Section = "admin_requests"
	SectionClubRequests  Section = "club_requests"
	SectionPostEvent     Section = "post_event"
	SectionAuditLog      Section = "audit_log"
)

// Reach is the outcome of trying to open a Section.
type Reach int

const (
	Allowed Reach = iota
	// NeedsLogin means there is no session; prompt for authentication.
	NeedsLogin
	// Forbidden means the session's role cannot use the section.
	Forbidden
)

// Capabilities is everything the UI shows or hides for a session.
type Capabilities struct {
	SignedIn            bool
	DisplayName         string
	RoleLabel           string
	ManageAdminRequests bool
	ManageClubRequests  bool
	// ClubScope filters club-join listings: nil means every club.
	ClubScope  *string
	PostEvents bool
	// EventClub is the fixed club for event posting, empty when the poster
	// may choose.
	EventClub string
	ViewAudit bool
}

// For derives capabilities from s. A nil session gets the anonymous set.
func For(s *auth.Session) Capabilities {
	if s == nil {
		return Capabilities{}
	}
	c := Capabilities{
		SignedIn:    true,
		DisplayName: s.DisplayName(),
		RoleLabel:   models.RoleLabel(s.Role),
	}
	switch s.Role {
	case models.RoleSuperAdmin:
		c.ManageAdminRequests = true
		c.ManageClubRequests = true
		c.PostEvents = true
		c.ViewAudit = true
	case models.RoleClubAdmin:
		if s.ClubName != "" {
			club := s.ClubName
			c.ManageClubRequests = true
			c.ClubScope = &club
			c.PostEvents = true
			c.EventClub = club
			c.RoleLabel = club + " Admin"
		}
	}
	return c
}

// ClubRequestScope returns the club filter for club-join listings and
// whether s may list them at all.
func ClubRequestScope(s *auth.Session) (scope *string, ok bool) {
	c := For(s)
	return c.ClubScope, c.ManageClubRequests
}

// CanDecideAdminRequest reports whether s may approve or reject admin
// applications.
func CanDecideAdminRequest(s *auth.Session) bool {
	return s.IsSuperAdmin()
}

// CanDecideClubRequest reports whether s may decide a join request for club.
// Club names match exactly.
func CanDecideClubRequest(s *auth.Session, club string) bool {
	switch {
	case s.IsSuperAdmin():
		return true
	case s.IsClubAdmin():
		return s.ClubName != "" && s.ClubName == club
	default:
		return false
	}
}

// CanPostEventFor reports whether s may post an event for club. Whether the
// club exists is checked separately.
func CanPostEventFor(s *auth.Session, club string) bool {
	return CanDecideClubRequest(s, club)
}

// CanReach decides whether s may open section.
func CanReach(s *auth.Session, section Section) Reach {
	if s == nil {
		return NeedsLogin
	}
	c := For(s)
	var ok bool
	switch section {
	case SectionAdminRequests:
		ok = c.ManageAdminRequests
	case SectionClubRequests:
		ok = c.ManageClubRequests
	case SectionPostEvent:
		ok = c.PostEvents
	case SectionAuditLog:
		ok = c.ViewAudit
	}
	if ok {
		return Allowed
	}
	return Forbidden
}
