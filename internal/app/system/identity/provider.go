// Package identity is the email/password identity provider. Accounts live in
// their own collection and are never shown in the UI; profiles are keyed by
// the account id.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/app/system/inputval"
	"github.com/dalemusser/clubhub/internal/app/system/normalize"
	"github.com/dalemusser/clubhub/internal/app/system/ratelimit"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 6

// Identity is an authenticated account.
type Identity struct {
	UID   string
	Email string
}

// AccountStore is the persistence the provider needs.
type AccountStore interface {
	Create(ctx context.Context, email, passwordHash string) (models.Account, error)
	GetByEmail(ctx context.Context, email string) (models.Account, error)
}

// Provider authenticates and registers accounts.
type Provider struct {
	accounts AccountStore
	limiter  ratelimit.Limiter
	log      *zap.Logger
	cost     int
}

// Option configures a Provider.
type Option func(*Provider)

// WithLimiter throttles repeated sign-in attempts per email.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(p *Provider) { p.limiter = l }
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(p *Provider) { p.cost = cost }
}

func NewProvider(accounts AccountStore, logger *zap.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{accounts: accounts, log: logger, cost: bcrypt.DefaultCost}
	for _, o := range opts {
		o(p)
	}
	return p
}

// SignIn checks email and password. Rejections are *AuthError values; any
// other error is a store failure.
func (p *Provider) SignIn(ctx context.Context, email, password string) (Identity, error) {
	email = normalize.Email(email)
	if !inputval.IsValidEmail(email) {
		return Identity{}, ErrInvalidEmail
	}

	key := ratelimit.EmailKey(email)
	if p.limiter != nil {
		ok, err := p.limiter.Allow(ctx, key)
		if err != nil {
			// Fail open when the limiter is unreachable.
			p.log.Warn("sign-in rate limiter unavailable", zap.Error(err))
		} else if !ok {
			return Identity{}, ErrTooManyRequests
		}
	}

	acct, err := p.accounts.GetByEmail(ctx, email)
	if errors.Is(err, storeerr.ErrNotFound) {
		return Identity{}, ErrUserNotFound
	}
	if err != nil {
		return Identity{}, err
	}
	if acct.Disabled {
		return Identity{}, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrWrongPassword
	}

	if p.limiter != nil {
		if err := p.limiter.Reset(ctx, key); err != nil {
			p.log.Warn("sign-in rate limiter reset failed", zap.Error(err))
		}
	}
	return Identity{UID: acct.ID.Hex(), Email: acct.Email}, nil
}

// SignUp creates an account.
func (p *Provider) SignUp(ctx context.Context, email, password string) (Identity, error) {
	email = normalize.Email(email)
	if !inputval.IsValidEmail(email) {
		return Identity{}, ErrInvalidEmail
	}
	if len(strings.TrimSpace(password)) < MinPasswordLength {
		return Identity{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return Identity{}, err
	}
	acct, err := p.accounts.Create(ctx, email, string(hash))
	if errors.Is(err, storeerr.ErrDuplicate) {
		return Identity{}, ErrEmailInUse
	}
	if err != nil {
		return Identity{}, err
	}
	return Identity{UID: acct.ID.Hex(), Email: acct.Email}, nil
}

// EnsureAccount returns the account for email, creating it with password
// when missing. The password of an existing account is left unchanged.
func (p *Provider) EnsureAccount(ctx context.Context, email, password string) (id Identity, created bool, err error) {
	acct, err := p.accounts.GetByEmail(ctx, normalize.Email(email))
	if err == nil {
		return Identity{UID: acct.ID.Hex(), Email: acct.Email}, false, nil
	}
	if !errors.Is(err, storeerr.ErrNotFound) {
		return Identity{}, false, err
	}
	id, err = p.SignUp(ctx, email, password)
	if err != nil {
		return Identity{}, false, err
	}
	return id, true, nil
}
