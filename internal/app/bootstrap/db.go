// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	accountstore "github.com/dalemusser/clubhub/internal/app/store/accounts"
	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	userstore "github.com/dalemusser/clubhub/internal/app/store/users"
	"github.com/dalemusser/clubhub/internal/app/system/identity"
	"github.com/dalemusser/clubhub/internal/app/system/indexes"
	"github.com/dalemusser/clubhub/internal/app/system/ratelimit"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/dalemusser/clubhub/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and, when configured, the Redis client
// behind sign-in throttling.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize).
		SetAppName("clubhub")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize),
		zap.Uint64("min_pool", appCfg.MongoMinPoolSize))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Txn:           txn.New(client, logger),
	}

	if appCfg.LoginRateLimit <= 0 {
		logger.Info("sign-in throttling disabled")
		return deps, nil
	}

	switch appCfg.RateLimitBackend {
	case "redis":
		rc, err := ratelimit.Connect(ctx, ratelimit.RedisOptions{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		if err != nil {
			_ = client.Disconnect(context.Background())
			return DBDeps{}, err
		}
		deps.Redis = rc
		deps.LoginLimiter = ratelimit.NewRedis(rc, "clubhub:login", appCfg.LoginRateLimit, appCfg.LoginRateWindow)
		logger.Info("sign-in throttling via redis", zap.String("addr", appCfg.RedisAddr))
	default:
		deps.LoginLimiter = ratelimit.NewMemory(appCfg.LoginRateLimit, appCfg.LoginRateWindow)
		logger.Info("sign-in throttling in memory")
	}

	return deps, nil
}

// EnsureSchema reconciles indexes, seeds the default clubs into an empty
// collection, and creates the configured super admin.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	if err := indexes.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	if appCfg.SeedClubs {
		n, err := clubstore.New(db).Seed(ctx, deps.Txn, clubstore.DefaultClubs())
		if err != nil {
			return fmt.Errorf("seed clubs: %w", err)
		}
		if n > 0 {
			logger.Info("seeded default clubs", zap.Int("count", n))
		}
	}

	if appCfg.SuperAdminEmail != "" {
		provider := identity.NewProvider(accountstore.New(db), logger)
		if err := ensureSuperAdmin(ctx, db, provider, appCfg, logger); err != nil {
			return err
		}
	}

	return nil
}

// ensureSuperAdmin makes sure the configured super admin can sign in. The
// account is created only when superadmin_password is set; an existing
// account keeps its password. The profile is always made an approved
// super admin.
func ensureSuperAdmin(ctx context.Context, db *mongo.Database, provider *identity.Provider, appCfg AppConfig, logger *zap.Logger) error {
	var (
		id      identity.Identity
		created bool
		err     error
	)
	if appCfg.SuperAdminPassword != "" {
		id, created, err = provider.EnsureAccount(ctx, appCfg.SuperAdminEmail, appCfg.SuperAdminPassword)
	} else {
		acct, gerr := accountstore.New(db).GetByEmail(ctx, appCfg.SuperAdminEmail)
		if gerr != nil {
			logger.Warn("superadmin_email set without superadmin_password and no account exists; skipping",
				zap.String("email", appCfg.SuperAdminEmail), zap.Error(gerr))
			return nil
		}
		id = identity.Identity{UID: acct.ID.Hex(), Email: acct.Email}
	}
	if err != nil {
		return fmt.Errorf("super admin account: %w", err)
	}

	oid, err := primitive.ObjectIDFromHex(id.UID)
	if err != nil {
		return fmt.Errorf("super admin account id %q: %w", id.UID, err)
	}
	profileCreated, err := userstore.New(db).UpsertSuperAdmin(ctx, oid, id.Email, appCfg.SuperAdminName)
	if err != nil {
		return fmt.Errorf("super admin profile: %w", err)
	}

	logger.Info("super admin ready",
		zap.String("email", id.Email),
		zap.Bool("account_created", created),
		zap.Bool("profile_created", profileCreated))
	return nil
}
