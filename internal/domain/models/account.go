// internal/domain/models/account.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account is an identity-provider credential record. It is never shown in
// the UI; the profile lives in User under the same id.
type Account struct {
	ID           primitive.ObjectID `bson:"_id"`
	Email        string             `bson:"email"` // normalized, unique
	PasswordHash string             `bson:"password_hash"`
	Disabled     bool               `bson:"disabled"`
	CreatedAt    time.Time          `bson:"created_at"`
}
