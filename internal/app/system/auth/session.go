package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/dalemusser/clubhub/internal/app/system/identity"
	"github.com/dalemusser/clubhub/internal/domain/models"
)

// Session is an authenticated, approved user. It only exists while the
// profile behind the identity is approved.
type Session struct {
	UID      string
	Email    string
	Name     string
	Phone    string
	Role     string
	ClubName string
	Status   string
}

// NewSession merges an identity with its profile.
func NewSession(id identity.Identity, u *models.User) *Session {
	s := &Session{
		UID:      id.UID,
		Email:    id.Email,
		Name:     u.Name,
		Phone:    u.Phone,
		Role:     u.Role,
		ClubName: u.ClubName,
		Status:   u.Status,
	}
	if s.Email == "" {
		s.Email = u.Email
	}
	return s
}

func (s *Session) IsSuperAdmin() bool { return s != nil && s.Role == models.RoleSuperAdmin }
func (s *Session) IsClubAdmin() bool  { return s != nil && s.Role == models.RoleClubAdmin }

// DisplayName is the name shown in the header, falling back to the email.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}

// Change is what a SessionContext subscriber is told.
type Change int

const (
	SessionEstablished Change = iota + 1
	SessionCleared
)

func (c Change) String() string {
	switch c {
	case SessionEstablished:
		return "session established"
	case SessionCleared:
		return "session cleared"
	default:
		return "unknown"
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionContext                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionContext holds the session of one browser for the lifetime of a
// request. It listens to the identity client and keeps the session in step
// with it: a signed-in identity is resolved against its profile, a failed
// resolution forces a sign-out, and a sign-out destroys the session.
type SessionContext struct {
	resolver *Resolver
	client   *identity.Client

	mu      sync.Mutex
	session *Session
	lastErr error
	subs    map[int]func(Change, *Session)
	nextSub int
}

// NewSessionContext binds a SessionContext to client. Call client.Start (or
// SignIn) afterwards to feed it the first notification.
func NewSessionContext(resolver *Resolver, client *identity.Client) *SessionContext {
	sc := &SessionContext{resolver: resolver, client: client, subs: map[int]func(Change, *Session){}}
	if client != nil {
		client.OnAuthStateChanged(sc.handle)
	}
	return sc
}

// Session returns the current session, or nil.
func (sc *SessionContext) Session() *Session {
	if sc == nil {
		return nil
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.session
}

// Err returns why the most recent signed-in notification did not produce a
// session, or nil when it did.
func (sc *SessionContext) Err() error {
	if sc == nil {
		return nil
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.lastErr
}

// Identity returns the identity the client currently holds.
func (sc *SessionContext) Identity() *identity.Identity {
	if sc == nil || sc.client == nil {
		return nil
	}
	return sc.client.Current()
}

// Subscribe registers fn for session changes and returns an unsubscribe func.
func (sc *SessionContext) Subscribe(fn func(Change, *Session)) func() {
	sc.mu.Lock()
	sc.nextSub++
	id := sc.nextSub
	sc.subs[id] = fn
	sc.mu.Unlock()
	return func() {
		sc.mu.Lock()
		delete(sc.subs, id)
		sc.mu.Unlock()
	}
}

// SignIn authenticates and resolves the session. Credential rejections come
// back as *identity.AuthError; an unusable profile as ErrProfileNotFound,
// ErrPendingApproval or a read error, in which case the identity has already
// been signed out again.
func (sc *SessionContext) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if sc == nil || sc.client == nil {
		return nil, ErrNoIdentity
	}
	if _, err := sc.client.SignIn(ctx, email, password); err != nil {
		return nil, err
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.session == nil {
		if sc.lastErr != nil {
			return nil, sc.lastErr
		}
		return nil, ErrProfileNotFound
	}
	return sc.session, nil
}

// SignOut signs the identity out. Without an identity it does nothing.
func (sc *SessionContext) SignOut(ctx context.Context) {
	if sc == nil {
		return
	}
	if sc.client == nil {
		sc.clear()
		return
	}
	sc.client.SignOut(ctx)
}

func (sc *SessionContext) handle(ctx context.Context, st identity.State) {
	if !st.SignedIn() {
		sc.clear()
		return
	}

	s, err := sc.resolver.Resolve(ctx, *st.Identity)

	sc.mu.Lock()
	sc.lastErr = err
	sc.mu.Unlock()

	if err != nil {
		sc.clear()
		sc.client.SignOut(ctx)
		return
	}

	sc.mu.Lock()
	sc.session = s
	sc.mu.Unlock()
	sc.notify(SessionEstablished, s)
}

func (sc *SessionContext) clear() {
	sc.mu.Lock()
	had := sc.session != nil
	sc.session = nil
	sc.mu.Unlock()
	if had {
		sc.notify(SessionCleared, nil)
	}
}

func (sc *SessionContext) notify(c Change, s *Session) {
	sc.mu.Lock()
	fns := make([]func(Change, *Session), 0, len(sc.subs))
	for i := 1; i <= sc.nextSub; i++ {
		if fn, ok := sc.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	sc.mu.Unlock()
	for _, fn := range fns {
		fn(c, s)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request context                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const sessionCtxKey ctxKey = "sessionContext"

// WithSessionContext attaches sc to the request.
func WithSessionContext(r *http.Request, sc *SessionContext) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionCtxKey, sc))
}

// FromRequest returns the request's SessionContext, or nil.
func FromRequest(r *http.Request) *SessionContext {
	sc, _ := r.Context().Value(sessionCtxKey).(*SessionContext)
	return sc
}

// CurrentSession returns the signed-in session and whether there is one.
func CurrentSession(r *http.Request) (*Session, bool) {
	s := FromRequest(r).Session()
	return s, s != nil
}

// WithTestSession attaches a SessionContext already holding s. Use in
// handler tests to bypass the cookie and resolver.
func WithTestSession(r *http.Request, s *Session) *http.Request {
	sc := &SessionContext{session: s, subs: map[int]func(Change, *Session){}}
	return WithSessionContext(r, sc)
}
