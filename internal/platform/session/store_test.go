package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if err := s.Put(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || string(got) != `{"a":1}` {
		t.Errorf("Get = %q, %v", got, ok)
	}
}

func TestMemoryStore_AbsentKey(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	_, ok, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected absent key")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	s.Put(ctx, "k", []byte("v"))

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("expected expired entry to be absent")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	s.Put(ctx, "k", []byte("v"))
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("expected deleted key to be absent")
	}
	// Deleting again is not an error.
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("unexpected error deleting absent key: %v", err)
	}
}

func TestMemoryStore_CopiesValue(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	in := []byte("abc")
	s.Put(ctx, "k", in)
	in[0] = 'z'

	got, _, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value mutated: %q", got)
	}
	got[0] = 'z'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("returned value aliased the store: %q", again)
	}
}
