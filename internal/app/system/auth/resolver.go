package auth

import (
	"context"
	"errors"

	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/app/system/identity"
	"github.com/dalemusser/clubhub/internal/app/system/metrics"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.uber.org/zap"
)

var (
	// ErrProfileNotFound means the identity has no user profile (never
	// applied, or the application was rejected).
	ErrProfileNotFound = errors.New("user profile not found")
	// ErrPendingApproval means the profile exists but is not yet approved.
	ErrPendingApproval = errors.New("account pending approval")
	// ErrNoIdentity means the SessionContext has no identity client to sign
	// in with.
	ErrNoIdentity = errors.New("auth: identity provider not configured")
)

// ProfileLoader loads the profile behind an identity.
// userstore.Fetcher is the production implementation.
type ProfileLoader interface {
	LoadProfile(ctx context.Context, uid string) (*models.User, error)
}

// Resolver applies the approval gate to identities.
type Resolver struct {
	profiles ProfileLoader
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func NewResolver(profiles ProfileLoader, logger *zap.Logger, m *metrics.Metrics) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{profiles: profiles, log: logger, metrics: m}
}

// Resolve returns a session for id when its profile exists and is approved.
// Otherwise it returns ErrProfileNotFound, ErrPendingApproval or a
// *storeerr.OpError with Kind ReadFailed.
func (r *Resolver) Resolve(ctx context.Context, id identity.Identity) (*Session, error) {
	u, err := r.profiles.LoadProfile(ctx, id.UID)
	switch {
	case errors.Is(err, storeerr.ErrNotFound):
		r.metrics.SessionResolved("profile_not_found")
		return nil, ErrProfileNotFound
	case err != nil:
		r.metrics.SessionResolved("read_failed")
		r.log.Error("session profile load failed", zap.String("user_id", id.UID), zap.Error(err))
		return nil, storeerr.Read("users.get", err)
	case !u.IsApproved():
		r.metrics.SessionResolved("pending_approval")
		return nil, ErrPendingApproval
	}

	r.metrics.SessionResolved("established")
	return NewSession(id, u), nil
}

// Reason is a short label for audit records.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProfileNotFound):
		return "profile_not_found"
	case errors.Is(err, ErrPendingApproval):
		return "pending_approval"
	default:
		return "read_failed"
	}
}

// Message is the text shown to a user whose sign-in produced no session.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return "User profile not found. Please contact administrator."
	case errors.Is(err, ErrPendingApproval):
		return "Your account is pending approval. Please wait for admin approval."
	default:
		return "Error loading user data. Please try again."
	}
}
