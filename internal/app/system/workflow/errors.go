package workflow

import (
	"errors"

	"github.com/dalemusser/clubhub/internal/app/store/storeerr"
	"github.com/dalemusser/clubhub/internal/app/system/inputval"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrForbidden        = errors.New("workflow: not allowed for this session")
	ErrAlreadyDecided   = errors.New("workflow: request already decided")
	ErrRequestNotFound  = errors.New("workflow: request not found")
	ErrWrongRequestType = errors.New("workflow: wrong request type")
	ErrInvalidInput     = errors.New("workflow: invalid input")
)

// StoreError is a failed store read or write, tagged with the step.
type StoreError = storeerr.OpError

// InputError carries per-field validation messages. It matches
// ErrInvalidInput with errors.Is.
type InputError struct {
	Fields inputval.Errors
}

func (e *InputError) Error() string { return "workflow: invalid input: " + e.Fields.Error() }

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(field, msg string) error {
	return &InputError{Fields: inputval.Errors{field: msg}}
}

// InconsistencyKind names a partial-failure state the engine leaves behind.
type InconsistencyKind string

const (
	// OrphanedAccount: an identity account exists without a profile or
	// admin request.
	OrphanedAccount InconsistencyKind = "orphaned_account"
	// ClubNotFound: an approved join request names a club that does not
	// exist, so no member count was raised.
	ClubNotFound InconsistencyKind = "club_not_found"
)

// Inconsistency is reported in Result. It never fails the operation by
// itself.
type Inconsistency struct {
	Kind      InconsistencyKind
	RequestID *primitive.ObjectID
	UserID    *primitive.ObjectID
	Club      string
	Detail    string
}

// Result describes a completed operation.
type Result struct {
	OpID            string
	RequestID       primitive.ObjectID
	Inconsistencies []Inconsistency
}
