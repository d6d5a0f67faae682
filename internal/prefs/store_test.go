package prefs

import (
	"context"
	"testing"
)

func TestMemoryStoreDefaults(t *testing.T) {
	store := NewMemoryStore(Preferences{Theme: "coffee"})

	got, err := store.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Theme != "coffee" {
		t.Fatalf("expected default theme %q got %q", "coffee", got.Theme)
	}
}

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore(Preferences{Theme: "coffee"})

	if err := store.Set(context.Background(), 1, Preferences{Theme: "forest"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Theme != "forest" {
		t.Fatalf("expected theme %q got %q", "forest", got.Theme)
	}

	// Other users keep the default.
	other, err := store.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("get other: %v", err)
	}
	if other.Theme != "coffee" {
		t.Fatalf("expected other user to keep default, got %q", other.Theme)
	}
}
