package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler reports whether ClubHub's backends answer. Redis is optional and
// only probed when the sign-in limiter uses it.
type Handler struct {
	Mongo *mongo.Client
	Redis *redis.Client
	Log   *zap.Logger
}

func NewHandler(client *mongo.Client, rc *redis.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Mongo: client,
		Redis: rc,
		Log:   logger,
	}
}

type check struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type report struct {
	Status string           `json:"status"`
	Checks map[string]check `json:"checks"`
}

func probe(ctx context.Context, ping func(context.Context) error) check {
	start := time.Now()
	err := ping(ctx)
	c := check{Status: "up", LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		c.Status = "down"
		c.Error = err.Error()
	}
	return c
}

// Serve answers GET and HEAD /health with 200 when every configured backend
// is up and 503 otherwise.
//
//	{"status":"ok","checks":{"mongo":{"status":"up","latency_ms":1}}}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	rep := report{Status: "ok", Checks: map[string]check{}}

	rep.Checks["mongo"] = probe(ctx, func(ctx context.Context) error {
		return h.Mongo.Ping(ctx, readpref.Primary())
	})
	if h.Redis != nil {
		rep.Checks["redis"] = probe(ctx, func(ctx context.Context) error {
			return h.Redis.Ping(ctx).Err()
		})
	}

	status := http.StatusOK
	for name, c := range rep.Checks {
		if c.Status != "up" {
			h.Log.Error("health: backend down", zap.String("backend", name), zap.String("error", c.Error))
			rep.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(rep)
}
