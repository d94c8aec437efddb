// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for ClubHub.
//
// These values come from environment variables (CLUBHUB_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings such as ports, TLS, log level, and
// request limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: clubhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime; zero means a browser-session cookie
	CSRFKey       string        // 32-byte key for CSRF tokens; derived from SessionKey when blank

	// Super admin bootstrap. Both email and password must be set to create it.
	SuperAdminEmail    string
	SuperAdminPassword string
	SuperAdminName     string

	// SeedClubs inserts the default clubs into an empty clubs collection.
	SeedClubs bool

	// Sign-in throttling
	LoginRateLimit   int           // attempts per window per email; 0 disables throttling
	LoginRateWindow  time.Duration // window length
	RateLimitBackend string        // "memory" or "redis"
	RedisAddr        string
	RedisPassword    string
	RedisDB          int

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogAuth     string
	AuditLogWorkflow string

	// MetricsEnabled mounts /metrics and the request counters.
	MetricsEnabled bool

	// Store operation timeouts; zero keeps the built-in defaults.
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
