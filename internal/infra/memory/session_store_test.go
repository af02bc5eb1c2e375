package memory

import (
	"testing"

	"trivia-party-service/internal/game"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	store.Put(&game.Session{ID: "s1"})
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected session present")
	}

	if !store.Delete("s1") {
		t.Fatalf("expected delete to report success")
	}
	if store.Delete("s1") {
		t.Fatalf("expected second delete to report not found")
	}
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}

func TestSessionStoreAll(t *testing.T) {
	store := NewSessionStore()
	store.Put(&game.Session{ID: "s1"})
	store.Put(&game.Session{ID: "s2"})

	if got := len(store.All()); got != 2 {
		t.Fatalf("expected 2 sessions, got %d", got)
	}
}
