// internal/domain/models/request.go
package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request discriminators stored in the "type" field.
const (
	RequestClubJoin = "club_join"
	RequestAdmin    = "admin_request"
)

// Request statuses. Pending is the only non-terminal state.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// ErrUnknownRequestType is returned when a stored request carries a type
// this build does not know how to decode.
var ErrUnknownRequestType = errors.New("unknown request type")

// RequestHeader holds the fields shared by every request variant.
type RequestHeader struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type      string             `bson:"type" json:"type"`
	Status    string             `bson:"status" json:"status"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	ApprovedBy string     `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	RejectedBy string     `bson:"rejected_by,omitempty" json:"rejected_by,omitempty"`
	RejectedAt *time.Time `bson:"rejected_at,omitempty" json:"rejected_at,omitempty"`
}

// Header returns the shared fields.
func (h *RequestHeader) Header() *RequestHeader { return h }

// IsPending reports whether the request still awaits a decision.
func (h *RequestHeader) IsPending() bool { return h.Status == RequestPending }

// Request is implemented by *ClubJoinRequest and *AdminRequest only.
type Request interface {
	Header() *RequestHeader
	isRequest()
}

// ClubJoinRequest is a student's request to join a club.
type ClubJoinRequest struct {
	RequestHeader `bson:",inline"`

	StudentName  string `bson:"student_name" json:"student_name"`
	StudentEmail string `bson:"student_email" json:"student_email"`
	StudentYear  string `bson:"student_year" json:"student_year"`
	StudentDept  string `bson:"student_dept" json:"student_dept"`
	ClubName     string `bson:"club_name" json:"club_name"`
	JoinReason   string `bson:"join_reason" json:"join_reason"`
}

func (*ClubJoinRequest) isRequest() {}

// AdminRequest is an application to become a club administrator. UserID is
// the account created for the applicant.
type AdminRequest struct {
	RequestHeader `bson:",inline"`

	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Phone    string             `bson:"phone" json:"phone"`
	ClubName string             `bson:"club_name" json:"club_name"`
	Reason   string             `bson:"reason" json:"reason"`
}

func (*AdminRequest) isRequest() {}

// DecodeRequest decodes a stored request into its concrete variant.
func DecodeRequest(raw bson.Raw) (Request, error) {
	tv, err := raw.LookupErr("type")
	if err != nil {
		return nil, fmt.Errorf("%w: missing type", ErrUnknownRequestType)
	}
	typ, ok := tv.StringValueOK()
	if !ok {
		return nil, fmt.Errorf("%w: non-string type", ErrUnknownRequestType)
	}

	switch typ {
	case RequestClubJoin:
		var r ClubJoinRequest
		if err := bson.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		return &r, nil
	case RequestAdmin:
		var r AdminRequest
		if err := bson.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		return &r, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequestType, typ)
	}
}
