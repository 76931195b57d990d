package kv

import (
	"context"
	"errors"
	"testing"
)

func TestMemorySetGetRemove(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "cart_u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	value := []byte(`[{"id":"a"}]`)
	if err := m.Set(ctx, "cart_u1", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'x'

	got, err := m.Get(ctx, "cart_u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[{"id":"a"}]` {
		t.Fatalf("stored value aliased caller buffer: %s", got)
	}

	if err := m.Remove(ctx, "cart_u1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := m.Remove(ctx, "cart_u1"); err != nil {
		t.Fatalf("second remove should be a no-op: %v", err)
	}
	if _, err := m.Get(ctx, "cart_u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}
