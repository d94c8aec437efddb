// Package workflow submits and decides club-join and admin requests. Each
// operation is an ordered list of store steps; multi-write operations run
// through a Runner so they commit together when the database supports
// transactions.
package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/app/system/auditlog"
	"github.com/dalemusser/clubhub/internal/app/system/metrics"
	"github.com/dalemusser/clubhub/internal/app/system/timeouts"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deps are the collaborators of an Engine. Audit and Metrics may be nil.
type Deps struct {
	Users    UserStore
	Clubs    ClubStore
	Requests RequestStore
	Events   EventStore
	Accounts Accounts
	Txn      Runner
	Log      *zap.Logger
	Audit    *auditlog.Logger
	Metrics  *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

type Engine struct {
	users    UserStore
	clubs    ClubStore
	requests RequestStore
	events   EventStore
	accounts Accounts
	txn      Runner
	log      *zap.Logger
	audit    *auditlog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func New(d Deps) *Engine {
	e := &Engine{
		users:    d.Users,
		clubs:    d.Clubs,
		requests: d.Requests,
		events:   d.Events,
		accounts: d.Accounts,
		txn:      d.Txn,
		log:      d.Log,
		audit:    d.Audit,
		metrics:  d.Metrics,
		now:      d.Now,
	}
	if e.txn == nil {
		e.txn = directRunner{}
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// op tracks one operation for logging, metrics and the Result.
type op struct {
	name   string
	id     string
	log    *zap.Logger
	result Result
}

func (e *Engine) begin(name string) *op {
	id := uuid.NewString()
	return &op{name: name, id: id, log: e.log.With(zap.String("op", name), zap.String("op_id", id)), result: Result{OpID: id}}
}

// finish records the outcome and returns err unchanged.
func (e *Engine) finish(o *op, err error) (Result, error) {
	outcome := outcomeOf(err)
	e.metrics.WorkflowOp(o.name, outcome)
	if err != nil {
		var se *StoreError
		if errors.As(err, &se) {
			o.log.Error("workflow operation failed", zap.Error(err))
		} else {
			o.log.Info("workflow operation refused", zap.String("outcome", outcome), zap.Error(err))
		}
	} else {
		o.log.Debug("workflow operation completed", zap.Int("inconsistencies", len(o.result.Inconsistencies)))
	}
	return o.result, err
}

// report makes an inconsistency observable and adds it to the result.
func (e *Engine) report(ctx context.Context, o *op, inc Inconsistency) {
	o.result.Inconsistencies = append(o.result.Inconsistencies, inc)

	fields := []zap.Field{zap.String("kind", string(inc.Kind)), zap.String("club", inc.Club), zap.String("detail", inc.Detail)}
	if inc.RequestID != nil {
		fields = append(fields, zap.String("request_id", inc.RequestID.Hex()))
	}
	if inc.UserID != nil {
		fields = append(fields, zap.String("user_id", inc.UserID.Hex()))
	}
	o.log.Warn("workflow inconsistency", fields...)
	e.audit.Inconsistency(ctx, string(inc.Kind), inc.RequestID, inc.UserID, inc.Club, inc.Detail)
	e.metrics.Inconsistency(string(inc.Kind))
}

func outcomeOf(err error) string {
	var se *StoreError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrAlreadyDecided):
		return "already_decided"
	case errors.Is(err, ErrRequestNotFound), errors.Is(err, ErrWrongRequestType):
		return "not_found"
	case errors.As(err, &se):
		return string(se.Kind)
	default:
		return "rejected"
	}
}

func longCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeouts.Long())
}

func mediumCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeouts.Medium())
}

// decisionErr maps a conditional-update failure onto the engine's errors.
func decisionErr(step string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storeerr.ErrNotPending):
		return ErrAlreadyDecided
	case errors.Is(err, storeerr.ErrNotFound):
		return ErrRequestNotFound
	default:
		return storeerr.Write(step, err)
	}
}
