// Package txn runs a group of store writes as one MongoDB transaction when
// the deployment supports it, and as plain sequential writes when it does not
// (standalone servers and some hosted tiers).
package txn

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner executes functions inside a transaction when possible.
// A nil Runner, or one without a client, runs functions directly.
type Runner struct {
	client      *mongo.Client
	log         *zap.Logger
	unsupported atomic.Bool
}

// New creates a Runner for the given client.
func New(client *mongo.Client, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{client: client, log: logger}
}

// Run executes fn. Store calls made by fn must use the context it receives.
//
// The first time the server reports that transactions are unavailable, the
// Runner logs once, remembers it, and from then on calls fn directly.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil || r.client == nil || r.unsupported.Load() {
		return fn(ctx)
	}

	sess, err := r.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			r.markUnsupported(err)
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		r.markUnsupported(err)
		return fn(ctx)
	}
	return err
}

// Supported reports whether the Runner still attempts transactions.
func (r *Runner) Supported() bool {
	return r != nil && r.client != nil && !r.unsupported.Load()
}

func (r *Runner) markUnsupported(err error) {
	if r.unsupported.CompareAndSwap(false, true) {
		r.log.Warn("mongo transactions unavailable; falling back to sequential writes", zap.Error(err))
	}
}

// replicaSetOnly is what a standalone server answers when asked to open a
// transaction.
const replicaSetOnly = "transaction numbers are only allowed on a replica set member or mongos"

// IsNotSupported reports whether err means the server cannot run
// multi-document transactions. Only server error codes and the standalone
// server's message count; other errors that mention transactions or
// sessions are real failures.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var se mongo.ServerError
	if errors.As(err, &se) {
		for _, code := range []int{
			20,  // IllegalOperation: transaction numbers need a replica set
			51,  // legacy IllegalOperation
			263, // OperationNotSupportedInTransaction
		} {
			if se.HasErrorCode(code) {
				return true
			}
		}
	}

	return strings.Contains(strings.ToLower(err.Error()), replicaSetOnly)
}
