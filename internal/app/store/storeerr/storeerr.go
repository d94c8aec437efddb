// Package storeerr holds the sentinel errors every store returns, so callers
// (and in-memory test doubles) agree on them without importing the driver.
package storeerr

import (
	"errors"
	"fmt"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound means the addressed document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a unique index rejected the write.
	ErrDuplicate = errors.New("duplicate key")
	// ErrNotPending means a conditional decision update found the request
	// already decided.
	ErrNotPending = errors.New("request is no longer pending")
)

// Translate maps driver errors onto the sentinels and passes others through.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case wafflemongo.IsDup(err):
		return ErrDuplicate
	default:
		return err
	}
}

// Kind classifies an OpError.
type Kind string

const (
	ReadFailed  Kind = "read_failed"
	WriteFailed Kind = "write_failed"
)

// OpError wraps a store failure with the operation that hit it.
type OpError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Read wraps err as a ReadFailed OpError. A nil err stays nil.
func Read(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Kind: ReadFailed, Op: op, Err: err}
}

// Write wraps err as a WriteFailed OpError. A nil err stays nil.
func Write(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Kind: WriteFailed, Op: op, Err: err}
}
