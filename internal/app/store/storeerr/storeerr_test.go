package storeerr

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestTranslate(t *testing.T) {
	other := errors.New("network down")
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no documents", mongo.ErrNoDocuments, ErrNotFound},
		{"wrapped no documents", fmt.Errorf("find: %w", mongo.ErrNoDocuments), ErrNotFound},
		{"duplicate", dup, ErrDuplicate},
		{"other", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.in)
			if !errors.Is(got, tt.want) && got != tt.want {
				t.Errorf("Translate(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOpError(t *testing.T) {
	if Read("users.get", nil) != nil || Write("clubs.inc", nil) != nil {
		t.Fatal("nil errors must stay nil")
	}

	err := Write("requests.insert", ErrDuplicate)
	var oe *OpError
	if !errors.As(err, &oe) {
		t.Fatalf("expected *OpError, got %T", err)
	}
	if oe.Kind != WriteFailed || oe.Op != "requests.insert" {
		t.Errorf("got %+v", oe)
	}
	if !errors.Is(err, ErrDuplicate) {
		t.Error("OpError should unwrap to the cause")
	}
	if got := Read("users.get", ErrNotFound).Error(); got != "users.get: read_failed: not found" {
		t.Errorf("Error() = %q", got)
	}
}
