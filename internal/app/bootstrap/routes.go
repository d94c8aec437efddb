// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	applyfeature "github.com/dalemusser/clubhub/internal/app/features/apply"
	auditlogfeature "github.com/dalemusser/clubhub/internal/app/features/auditlog"
	clubsfeature "github.com/dalemusser/clubhub/internal/app/features/clubs"
	errorsfeature "github.com/dalemusser/clubhub/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/clubhub/internal/app/features/events"
	healthfeature "github.com/dalemusser/clubhub/internal/app/features/health"
	homefeature "github.com/dalemusser/clubhub/internal/app/features/home"
	loginfeature "github.com/dalemusser/clubhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/clubhub/internal/app/features/logout"
	registerfeature "github.com/dalemusser/clubhub/internal/app/features/register"
	requestsfeature "github.com/dalemusser/clubhub/internal/app/features/requests"
	accountstore "github.com/dalemusser/clubhub/internal/app/store/accounts"
	auditstore "github.com/dalemusser/clubhub/internal/app/store/audit"
	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	eventstore "github.com/dalemusser/clubhub/internal/app/store/events"
	requeststore "github.com/dalemusser/clubhub/internal/app/store/requests"
	userstore "github.com/dalemusser/clubhub/internal/app/store/users"
	"github.com/dalemusser/clubhub/internal/app/system/auditlog"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/identity"
	"github.com/dalemusser/clubhub/internal/app/system/metrics"
	"github.com/dalemusser/clubhub/internal/app/system/workflow"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for ClubHub.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It builds the shared services (identity
// provider, session manager, workflow engine, audit log, metrics), applies
// the global middleware, and mounts the feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	prod := coreCfg.Env == "prod"

	var m *metrics.Metrics
	if appCfg.MetricsEnabled {
		m = metrics.New()
	}

	auditLog := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:     appCfg.AuditLogAuth,
		Workflow: appCfg.AuditLogWorkflow,
	})

	// Identity provider and the session manager that resolves it against
	// profiles on every request.
	var providerOpts []identity.Option
	if deps.LoginLimiter != nil {
		providerOpts = append(providerOpts, identity.WithLimiter(deps.LoginLimiter))
	}
	provider := identity.NewProvider(accountstore.New(db), logger, providerOpts...)

	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, prod, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.UseIdentity(provider, auth.NewResolver(userstore.NewFetcher(db), logger, m))
	sessionMgr.UseAudit(auditLog)

	engine := workflow.New(workflow.Deps{
		Users:    userstore.New(db),
		Clubs:    clubstore.New(db),
		Requests: requeststore.New(db),
		Events:   eventstore.New(db),
		Accounts: provider,
		Txn:      deps.Txn,
		Log:      logger,
		Audit:    auditLog,
		Metrics:  m,
	})

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(m.Middleware)

	// Health and metrics sit outside CSRF and session handling.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(app chi.Router) {
		if !prod {
			app.Use(markPlaintext)
		}
		app.Use(csrf.Protect(csrfKey(appCfg),
			csrf.Secure(prod),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
		))

		// Global auth middleware: resolves the cookie identity into a
		// Session on every request.
		app.Use(sessionMgr.LoadSession)

		// Public pages
		homeHandler := homefeature.NewHandler(db, logger)
		app.Mount("/", homefeature.Routes(homeHandler))

		clubsHandler := clubsfeature.NewHandler(db, logger)
		app.Mount("/clubs", clubsfeature.Routes(clubsHandler))

		eventsHandler := eventsfeature.NewHandler(db, engine, errLog, logger)
		app.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr))

		registerHandler := registerfeature.NewHandler(db, engine, errLog, logger)
		app.Mount("/register", registerfeature.Routes(registerHandler))

		applyHandler := applyfeature.NewHandler(db, engine, sessionMgr, errLog, logger)
		app.Mount("/apply", applyfeature.Routes(applyHandler))

		// Authentication
		loginHandler := loginfeature.NewHandler(sessionMgr, errLog, auditLog, m, logger)
		app.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
		app.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		// Request management
		requestsHandler := requestsfeature.NewHandler(engine, errLog, logger)
		app.Mount("/requests", requestsfeature.Routes(requestsHandler, sessionMgr))

		auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
		app.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

		// Error pages
		errorsHandler := errorsfeature.NewHandler()
		app.Get("/forbidden", errorsHandler.Forbidden)
		app.Get("/unauthorized", errorsHandler.Unauthorized)
	})

	return r, nil
}

// csrfKey returns the configured CSRF key or one derived from the session
// key.
func csrfKey(appCfg AppConfig) []byte {
	if appCfg.CSRFKey != "" {
		return []byte(appCfg.CSRFKey)
	}
	sum := sha256.Sum256([]byte("clubhub-csrf:" + appCfg.SessionKey))
	return sum[:]
}

// markPlaintext tells the CSRF middleware that plain-http requests are
// expected, so its HTTPS referer check does not reject local development.
func markPlaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}
