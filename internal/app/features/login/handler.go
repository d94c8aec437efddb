// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/clubhub/internal/app/features/errors"
	"github.com/dalemusser/clubhub/internal/app/store/audit"
	"github.com/dalemusser/clubhub/internal/app/system/auditlog"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/identity"
	"github.com/dalemusser/clubhub/internal/app/system/metrics"
	"github.com/dalemusser/clubhub/internal/app/system/normalize"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/clubhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Metrics    *metrics.Metrics
}

func NewHandler(sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, auditLog *auditlog.Logger, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   auditLog,
		Metrics:    m,
	}
}

type loginData struct {
	viewdata.BaseVM
	Email  string
	Return string
	Error  string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, email, ret, msg string) {
	templates.Render(w, r, "login", loginData{
		BaseVM: viewdata.NewBaseVM(r, "Login", "/"),
		Email:  email,
		Return: ret,
		Error:  msg,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeLogin shows the sign-in form. A signed-in user is sent on to the
// return URL.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := query.Get(r, "return")
	if _, ok := auth.CurrentSession(r); ok {
		http.Redirect(w, r, urlutil.SafeReturn(ret, "", "/"), http.StatusSeeOther)
		return
	}
	h.render(w, r, "", ret, "")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLoginPost signs in with email and password. The identity must also
// have an approved profile; otherwise the identity is signed out again and
// the form explains why.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	ret := strings.TrimSpace(r.FormValue("return"))

	if email == "" || password == "" {
		h.render(w, r, email, ret, "Please enter your email and password.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc := auth.FromRequest(r)
	s, err := sc.SignIn(ctx, email, password)
	if err != nil {
		h.signInFailed(ctx, w, r, sc, email, ret, err)
		return
	}

	h.SessionMgr.Persist(w, r, sc)
	h.Metrics.SignIn("ok")
	if uid, perr := primitive.ObjectIDFromHex(s.UID); perr == nil {
		h.AuditLog.LoginSuccess(ctx, r, uid, s.Email)
	}
	h.Log.Info("user signed in", zap.String("user_id", s.UID), zap.String("role", s.Role))

	http.Redirect(w, r, urlutil.SafeReturn(ret, "", "/"), http.StatusSeeOther)
}

func (h *Handler) signInFailed(ctx context.Context, w http.ResponseWriter, r *http.Request, sc *auth.SessionContext, email, ret string, err error) {
	var ae *identity.AuthError
	switch {
	case errors.As(err, &ae):
		h.Metrics.SignIn(string(ae.Code))
		h.AuditLog.LoginFailed(ctx, r, failedEvent(ae.Code), email, string(ae.Code))
		h.render(w, r, email, ret, identity.SignInMessage(err))

	case errors.Is(err, auth.ErrProfileNotFound), errors.Is(err, auth.ErrPendingApproval):
		reason := auth.Reason(err)
		h.Metrics.SignIn(reason)
		h.AuditLog.LoginFailed(ctx, r, audit.EventSessionRejected, email, reason)
		// The identity was signed out again; make sure the browser forgets it.
		h.SessionMgr.Persist(w, r, sc)
		h.render(w, r, email, ret, auth.Message(err))

	case errors.Is(err, auth.ErrNoIdentity):
		h.ErrLog.LogServerError(w, r, "sign-in without identity provider", err, identity.SignInFailedMessage, "/login")

	default:
		h.Metrics.SignIn("error")
		h.Log.Error("sign-in failed", zap.String("email", email), zap.Error(err))
		h.SessionMgr.Persist(w, r, sc)
		h.render(w, r, email, ret, auth.Message(err))
	}
}

func failedEvent(code identity.Code) string {
	switch code {
	case identity.CodeUserNotFound:
		return audit.EventLoginFailedUserNotFound
	case identity.CodeWrongPassword:
		return audit.EventLoginFailedWrongPassword
	case identity.CodeUserDisabled:
		return audit.EventLoginFailedUserDisabled
	case identity.CodeTooManyRequests:
		return audit.EventLoginFailedRateLimit
	default:
		return audit.EventLoginFailedInvalidEmail
	}
}
