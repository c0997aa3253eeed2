package db

import (
	"errors"
	"testing"

	"github.com/Arvi89/planning-taki/models"
)

func TestGetOrCreate(t *testing.T) {
	store := NewStore(models.Rules{}, nil)

	session, created := store.GetOrCreate("X", "")
	if !created {
		t.Fatal("expected a new session")
	}
	if session.Phase != models.PhaseLobby || len(session.Players) != 0 || len(session.Tasks) != 0 {
		t.Fatalf("new session is not empty: %+v", session)
	}
	if session.Scale.Name != models.DefaultScaleName {
		t.Fatalf("expected default scale, got %q", session.Scale.Name)
	}

	again, created := store.GetOrCreate("X", "fibonacci-zero")
	if created || again != session {
		t.Fatal("expected the existing session")
	}
	if again.Scale.Name != models.DefaultScaleName {
		t.Fatal("scale of an existing session must not change")
	}
}

func TestGetOrCreateWithScale(t *testing.T) {
	store := NewStore(models.Rules{}, nil)

	session, _ := store.GetOrCreate("Z", "fibonacci-zero")
	if session.Scale.Name != "fibonacci-zero" {
		t.Fatalf("expected fibonacci-zero, got %q", session.Scale.Name)
	}
	unknown, _ := store.GetOrCreate("U", "nope")
	if unknown.Scale.Name != models.DefaultScaleName {
		t.Fatalf("unknown scale should fall back, got %q", unknown.Scale.Name)
	}
}

func TestGetMissing(t *testing.T) {
	store := NewStore(models.Rules{}, nil)

	if _, err := store.Get("nope"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteIfEmpty(t *testing.T) {
	store := NewStore(models.Rules{}, nil)
	session, _ := store.GetOrCreate("X", "")
	if err := session.AddPlayer("A", "Ann", 10); err != nil {
		t.Fatalf("add player: %v", err)
	}

	if store.DeleteIfEmpty("X") {
		t.Fatal("session with players must not be deleted")
	}
	if err := session.RemovePlayer("A"); err != nil {
		t.Fatalf("remove player: %v", err)
	}
	if !store.DeleteIfEmpty("X") {
		t.Fatal("expected empty session to be deleted")
	}
	if store.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", store.Len())
	}

	fresh, created := store.GetOrCreate("X", "")
	if !created || fresh == session {
		t.Fatal("expected a fresh session after deletion")
	}
}

func TestCleanupEmptySessions(t *testing.T) {
	store := NewStore(models.Rules{}, nil)
	busy, _ := store.GetOrCreate("busy", "")
	_ = busy.AddPlayer("A", "Ann", 5)
	store.GetOrCreate("idle-1", "")
	store.GetOrCreate("idle-2", "")

	if n := store.CleanupEmptySessions(); n != 2 {
		t.Fatalf("expected 2 cleaned, got %d", n)
	}
	if _, err := store.Get("busy"); err != nil {
		t.Fatalf("busy session removed: %v", err)
	}
}

func TestMemberships(t *testing.T) {
	store := NewStore(models.Rules{}, nil)

	if _, err := store.SessionOf("A"); !errors.Is(err, models.ErrNotJoined) {
		t.Fatalf("expected ErrNotJoined, got %v", err)
	}

	session, _ := store.GetOrCreate("X", "")
	store.Bind("A", "X")
	got, err := store.SessionOf("A")
	if err != nil || got != session {
		t.Fatalf("expected session X, got %v %v", got, err)
	}

	if id, ok := store.Unbind("A"); !ok || id != "X" {
		t.Fatalf("unbind returned %q %v", id, ok)
	}
	if _, ok := store.Membership("A"); ok {
		t.Fatal("membership should be gone")
	}

	store.Bind("B", "gone")
	if _, err := store.SessionOf("B"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
