// internal/domain/models/club.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Club is a student club. Clubs are seeded once and never deleted; Members
// only ever grows through approved join requests.
type Club struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"` // folded, unique
	Description string             `bson:"description" json:"description"`
	Incharge    string             `bson:"incharge" json:"incharge"`
	Members     int64              `bson:"members" json:"members"`
	Activities  string             `bson:"activities" json:"activities"`
	Contact     string             `bson:"contact" json:"contact"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
