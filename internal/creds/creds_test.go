package creds

import (
	"errors"
	"fmt"
	"testing"
)

func TestSetGetDelete(t *testing.T) {
	s := NewStore()
	if _, err := s.Get("bkg-euref"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on empty store: err = %v, want ErrNotFound", err)
	}

	want := Credentials{Username: "rover42", Password: "hunter2"}
	if err := s.Set("bkg-euref", want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get("bkg-euref")
	if err != nil || got != want {
		t.Errorf("Get = %+v, %v", got, err)
	}
	if !s.Has("bkg-euref") || s.Has("auscors") {
		t.Error("Has answered wrong")
	}

	s.Delete("bkg-euref")
	if s.Has("bkg-euref") || s.Len() != 0 {
		t.Error("Delete did not remove the entry")
	}
}

func TestCapacity(t *testing.T) {
	s := NewStore()
	for i := 0; i < MaxEntries; i++ {
		if err := s.Set(fmt.Sprintf("svc-%d", i), Credentials{Username: "u"}); err != nil {
			t.Fatalf("Set %d: %v", i, err)
		}
	}
	if err := s.Set("one-too-many", Credentials{Username: "u"}); !errors.Is(err, ErrStoreFull) {
		t.Errorf("overflow: err = %v, want ErrStoreFull", err)
	}
	// Replacing an existing entry never counts against capacity.
	if err := s.Set("svc-0", Credentials{Username: "replacement"}); err != nil {
		t.Errorf("replace at capacity: %v", err)
	}
}
