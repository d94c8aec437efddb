package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/clubhub/internal/app/system/auditlog"
	"github.com/dalemusser/clubhub/internal/app/system/identity"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session cookie                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	uidKey   = "uid"
	emailKey = "email"
)

// SessionManager persists the signed-in identity in a signed cookie and
// resolves it against the profile store on every request.
type SessionManager struct {
	store    *sessions.CookieStore
	name     string
	log      *zap.Logger
	provider *identity.Provider
	resolver *Resolver
	audit    *auditlog.Logger
}

// NewSessionManager creates the cookie store. In production (secure=true)
// cookies are Secure with SameSite=None; over plain http in development use
// secure=false so browsers accept them.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "clubhub-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// UseIdentity wires the identity provider and the resolver. Until it is
// called, LoadSession attaches an empty SessionContext.
func (sm *SessionManager) UseIdentity(p *identity.Provider, r *Resolver) {
	sm.provider = p
	sm.resolver = r
}

// UseAudit records rejected sessions in the audit trail.
func (sm *SessionManager) UseAudit(a *auditlog.Logger) { sm.audit = a }

// Provider returns the wired identity provider.
func (sm *SessionManager) Provider() *identity.Provider { return sm.provider }

// LoadSession replays the identity stored in the cookie through a fresh
// identity client and SessionContext, so the profile is re-read on every
// request. When the profile no longer permits a session the cookie is
// cleared.
func (sm *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sm.resolver == nil {
			next.ServeHTTP(w, WithSessionContext(r, NewSessionContext(nil, nil)))
			return
		}

		var initial *identity.Identity
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			var se securecookie.Error
			if errors.As(err, &se) && se.IsDecode() {
				// Signed with another key or tampered with; treat as signed out.
				sm.log.Debug("undecodable session cookie ignored", zap.Error(err))
			} else {
				sm.log.Warn("session cookie read failed", zap.Error(err))
			}
		}
		if uid, _ := sess.Values[uidKey].(string); uid != "" {
			email, _ := sess.Values[emailKey].(string)
			initial = &identity.Identity{UID: uid, Email: email}
		}

		client := identity.NewClient(sm.provider, initial)
		sc := NewSessionContext(sm.resolver, client)
		client.Start(r.Context())

		if initial != nil && sc.Session() == nil {
			err := sc.Err()
			sm.log.Info("stored session rejected",
				zap.String("user_id", initial.UID),
				zap.String("reason", Reason(err)))
			if oid, perr := primitive.ObjectIDFromHex(initial.UID); perr == nil {
				sm.audit.SessionRejected(r.Context(), r, oid, initial.Email, Reason(err))
			}
			sm.Persist(w, r, sc)
		}

		// Only changes made while handling the request are logged; the
		// replay above is not.
		unsubscribe := sc.Subscribe(func(c Change, s *Session) {
			uid := ""
			if s != nil {
				uid = s.UID
			} else if initial != nil {
				uid = initial.UID
			}
			sm.log.Info("session changed", zap.Stringer("change", c), zap.String("user_id", uid))
		})
		defer unsubscribe()

		next.ServeHTTP(w, WithSessionContext(r, sc))
	})
}

// Persist writes the SessionContext's current identity to the cookie, or
// expires the cookie when there is no session. Call it after SignIn or
// SignOut and before writing the response body.
func (sm *SessionManager) Persist(w http.ResponseWriter, r *http.Request, sc *SessionContext) {
	sess, _ := sm.store.Get(r, sm.name)

	if s := sc.Session(); s != nil {
		sess.Values[uidKey] = s.UID
		sess.Values[emailKey] = s.Email
	} else {
		delete(sess.Values, uidKey)
		delete(sess.Values, emailKey)
		sess.Options.MaxAge = -1
	}
	if err := sess.Save(r, w); err != nil {
		sm.log.Error("session save failed", zap.Error(err))
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Gates                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// RequireSignedIn ensures there is a session in context (set by LoadSession).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentSession(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		unauthorized(w, r)
	})
}

// RequireRole ensures there is a session with one of the allowed roles.
// Not signed in behaves like RequireSignedIn; a wrong role goes to /forbidden.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := CurrentSession(r)
			if !ok {
				unauthorized(w, r)
				return
			}

			if _, has := set[strings.ToLower(s.Role)]; !has {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoginURL is the login page with a return parameter for r.
func LoginURL(r *http.Request) string {
	return "/login?return=" + url.QueryEscape(r.URL.RequestURI())
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	dest := LoginURL(r)

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
