package testutil

import (
	accountstore "github.com/dalemusser/clubhub/internal/app/store/accounts"
	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	eventstore "github.com/dalemusser/clubhub/internal/app/store/events"
	requeststore "github.com/dalemusser/clubhub/internal/app/store/requests"
	userstore "github.com/dalemusser/clubhub/internal/app/store/users"
	"github.com/dalemusser/clubhub/internal/app/system/auth"
	"github.com/dalemusser/clubhub/internal/app/system/identity"
	"github.com/dalemusser/clubhub/internal/app/system/workflow"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Provider returns an identity provider over db's accounts collection with
// the cheapest bcrypt cost.
func Provider(db *mongo.Database) *identity.Provider {
	return identity.NewProvider(accountstore.New(db), zap.NewNop(), identity.WithBcryptCost(bcrypt.MinCost))
}

// Engine returns a workflow engine backed by db. Writes run without
// transactions so tests work against a standalone server.
func Engine(db *mongo.Database) *workflow.Engine {
	return workflow.New(workflow.Deps{
		Users:    userstore.New(db),
		Clubs:    clubstore.New(db),
		Requests: requeststore.New(db),
		Events:   eventstore.New(db),
		Accounts: Provider(db),
		Log:      zap.NewNop(),
	})
}

// SessionManager returns a session manager wired to db's accounts and
// profiles, using a development cookie.
func SessionManager(db *mongo.Database) (*auth.SessionManager, error) {
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-0123456789", "test-session", "", 0, false, zap.NewNop())
	if err != nil {
		return nil, err
	}
	sm.UseIdentity(Provider(db), auth.NewResolver(userstore.NewFetcher(db), zap.NewNop(), nil))
	return sm, nil
}
