// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// minSessionKeyLen is the shortest session key accepted outside dev.
const minSessionKeyLen = 32

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for ClubHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: CLUBHUB_MONGO_URI, CLUBHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "clubhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "clubhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "0s", Desc: "Session cookie lifetime (0 keeps it until the browser closes)"},
	{Name: "csrf_key", Default: "", Desc: "CSRF token key, 32 bytes (blank derives one from session_key)"},

	// SuperAdmin bootstrap
	{Name: "superadmin_email", Default: "", Desc: "Email of the super admin account (created on startup)"},
	{Name: "superadmin_password", Default: "", Desc: "Password used when the super admin account is first created"},
	{Name: "superadmin_name", Default: "Super Admin", Desc: "Display name of the super admin profile"},
	{Name: "seed_clubs", Default: true, Desc: "Insert the default clubs when the clubs collection is empty"},

	// Sign-in throttling
	{Name: "login_rate_limit", Default: 10, Desc: "Sign-in attempts allowed per email per window (0 disables)"},
	{Name: "login_rate_window", Default: "15m", Desc: "Sign-in throttling window (e.g., 15m, 1h)"},
	{Name: "ratelimit_backend", Default: "memory", Desc: "Throttling backend: 'memory' or 'redis'"},
	{Name: "redis_addr", Default: "localhost:6379", Desc: "Redis address for the redis backend"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_workflow", Default: "all", Desc: "Request workflow event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "metrics_enabled", Default: true, Desc: "Expose Prometheus metrics at /metrics"},

	// Store timeouts
	{Name: "timeout_short", Default: "0s", Desc: "Timeout for single-document reads (0 keeps default)"},
	{Name: "timeout_medium", Default: "0s", Desc: "Timeout for listings and single writes (0 keeps default)"},
	{Name: "timeout_long", Default: "0s", Desc: "Timeout for multi-step workflow operations (0 keeps default)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CLUBHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CLUBHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 0),
		CSRFKey:          appValues.String("csrf_key"),

		// SuperAdmin
		SuperAdminEmail:    appValues.String("superadmin_email"),
		SuperAdminPassword: appValues.String("superadmin_password"),
		SuperAdminName:     appValues.String("superadmin_name"),
		SeedClubs:          appValues.Bool("seed_clubs"),

		// Throttling
		LoginRateLimit:   appValues.Int("login_rate_limit"),
		LoginRateWindow:  appValues.Duration("login_rate_window", 15*time.Minute),
		RateLimitBackend: strings.ToLower(strings.TrimSpace(appValues.String("ratelimit_backend"))),
		RedisAddr:        appValues.String("redis_addr"),
		RedisPassword:    appValues.String("redis_password"),
		RedisDB:          appValues.Int("redis_db"),

		// Audit logging
		AuditLogAuth:     appValues.String("audit_log_auth"),
		AuditLogWorkflow: appValues.String("audit_log_workflow"),

		MetricsEnabled: appValues.Bool("metrics_enabled"),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// ClubHub validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and rejects weak or inconsistent
// session and throttling settings.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	if len(appCfg.SessionKey) < minSessionKeyLen {
		return fmt.Errorf("session_key must be at least %d characters", minSessionKeyLen)
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		return fmt.Errorf("session_key must be changed from the development default in prod")
	}
	if appCfg.CSRFKey != "" && len(appCfg.CSRFKey) != 32 {
		return fmt.Errorf("csrf_key must be exactly 32 bytes")
	}
	if appCfg.SessionMaxAge < 0 {
		return fmt.Errorf("session_max_age must not be negative")
	}

	if appCfg.SuperAdminPassword != "" && appCfg.SuperAdminEmail == "" {
		return fmt.Errorf("superadmin_password is set but superadmin_email is empty")
	}

	if appCfg.LoginRateLimit < 0 {
		return fmt.Errorf("login_rate_limit must not be negative")
	}
	if appCfg.LoginRateLimit > 0 && appCfg.LoginRateWindow <= 0 {
		return fmt.Errorf("login_rate_window must be positive when login_rate_limit is set")
	}
	switch appCfg.RateLimitBackend {
	case "memory":
	case "redis":
		if strings.TrimSpace(appCfg.RedisAddr) == "" {
			return fmt.Errorf("ratelimit_backend=redis requires redis_addr")
		}
		if appCfg.RedisDB < 0 {
			return fmt.Errorf("redis_db must not be negative")
		}
	default:
		return fmt.Errorf("ratelimit_backend must be 'memory' or 'redis', got %q", appCfg.RateLimitBackend)
	}

	for key, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_workflow": appCfg.AuditLogWorkflow} {
		switch v {
		case "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, v)
		}
	}

	return nil
}
