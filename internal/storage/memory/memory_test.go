package memory

import (
	"context"
	"testing"
)

func TestMemoryStoreGetPut(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, found, err := s.Get(ctx, "k"); found || err != nil {
		t.Fatalf("unexpected get on empty store: found=%v err=%v", found, err)
	}

	buf := []byte("hello")
	if err := s.Put(ctx, "k", buf); err != nil {
		t.Fatalf("put: %v", err)
	}
	buf[0] = 'j'
	got, found, err := s.Get(ctx, "k")
	if err != nil || !found || string(got) != "hello" {
		t.Fatalf("get = %q found=%v err=%v", got, found, err)
	}
	got[0] = 'x'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != "hello" {
		t.Fatalf("store must not alias caller buffers, got %q", again)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestNewWithSeeds(t *testing.T) {
	s := NewWith("state", []byte(`{}`))
	got, found, _ := s.Get(context.Background(), "state")
	if !found || string(got) != `{}` {
		t.Fatalf("seed missing: %q", got)
	}
}
