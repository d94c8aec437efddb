package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuperAdminSession returns an approved super admin session.
func SuperAdminSession() *auth.Session {
	return &auth.Session{
		UID:    primitive.NewObjectID().Hex(),
		Email:  "root@test.edu",
		Name:   "Test Super Admin",
		Role:   models.RoleSuperAdmin,
		Status: models.UserApproved,
	}
}

// ClubAdminSession returns an approved club admin session for club.
func ClubAdminSession(club string) *auth.Session {
	return &auth.Session{
		UID:      primitive.NewObjectID().Hex(),
		Email:    "lead@test.edu",
		Name:     "Test Club Admin",
		Role:     models.RoleClubAdmin,
		ClubName: club,
		Status:   models.UserApproved,
	}
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a session in context.
func NewAuthenticatedRequest(method, target string, s *auth.Session) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return auth.WithTestSession(req, s)
}

// NewFormRequest creates a url-encoded POST request. A nil session leaves
// the request anonymous.
func NewFormRequest(target string, form url.Values, s *auth.Session) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if s != nil {
		req = auth.WithTestSession(req, s)
	}
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	location := r.Header().Get("Location")
	if location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
