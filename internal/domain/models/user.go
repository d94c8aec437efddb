// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleSuperAdmin = "super_admin"
	RoleClubAdmin  = "club_admin"
)

// User statuses. Only approved users may hold a session.
const (
	UserPending  = "pending"
	UserApproved = "approved"
)

// User is the profile of an administrator.
//
// The _id is the identity account id, so an account and its profile share a key.
// ClubName is only meaningful for club admins.
type User struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Email    string             `bson:"email" json:"email"`
	Name     string             `bson:"name" json:"name"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role     string             `bson:"role" json:"role"` // super_admin | club_admin
	ClubName string             `bson:"club_name,omitempty" json:"club_name,omitempty"`
	Status   string             `bson:"status" json:"status"` // pending | approved
	Reason   string             `bson:"reason,omitempty" json:"reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsApproved reports whether the user has passed the approval gate.
func (u User) IsApproved() bool { return u.Status == UserApproved }

// RoleLabel is the human label shown next to the user's name.
func RoleLabel(role string) string {
	switch role {
	case RoleSuperAdmin:
		return "Super Admin"
	case RoleClubAdmin:
		return "Club Admin"
	default:
		return ""
	}
}
