// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/clubhub/internal/app/system/ratelimit"
	"github.com/dalemusser/clubhub/internal/app/system/txn"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Txn groups multi-document writes on MongoClient.
	Txn *txn.Runner

	// Redis is set only when ratelimit_backend is "redis".
	Redis *redis.Client

	// LoginLimiter throttles sign-in attempts; nil when throttling is off.
	LoginLimiter ratelimit.Limiter
}
