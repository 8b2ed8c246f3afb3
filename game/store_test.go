package game

import (
	"strings"
	"testing"
	"time"

	"github.com/nelhage/fourline/four"
)

func TestStoreLifecycle(t *testing.T) {
	st := NewStore()
	a := st.Create(Config{})
	b := st.Create(Config{WithAI: true})
	if a.GameID() == b.GameID() {
		t.Fatalf("duplicate game ids: %q", a.GameID())
	}
	for _, s := range []*Session{a, b} {
		if !strings.HasPrefix(s.GameID(), "game_") {
			t.Errorf("unexpected id shape: %q", s.GameID())
		}
	}
	if st.Len() != 2 {
		t.Fatalf("len=%d, want 2", st.Len())
	}

	got, err := st.Get(a.GameID())
	if err != nil {
		t.Fatal(err)
	}
	if got != a {
		t.Fatal("Get returned a different session")
	}
	if _, err := st.Get("game_missing"); err != ErrSessionNotFound {
		t.Fatalf("got err=%v, want ErrSessionNotFound", err)
	}

	if err := st.Delete(a.GameID()); err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(a.GameID()); err != ErrSessionNotFound {
		t.Fatalf("second delete: err=%v, want ErrSessionNotFound", err)
	}
	if st.Len() != 1 {
		t.Fatalf("len=%d after delete, want 1", st.Len())
	}
}

func TestStoreKeepsConfiguredID(t *testing.T) {
	st := NewStore()
	s := st.Create(Config{GameID: "g42"})
	if s.GameID() != "g42" {
		t.Fatalf("id=%q, want g42", s.GameID())
	}
	if _, err := st.Get("g42"); err != nil {
		t.Fatal(err)
	}
}

func TestStoreSweep(t *testing.T) {
	st := NewStore()
	st.Create(Config{})
	st.Create(Config{})
	if n := st.Sweep(time.Hour); n != 0 {
		t.Fatalf("swept %d fresh sessions", n)
	}
	// A negative idle cutoff ages everything out immediately.
	if n := st.Sweep(-time.Second); n != 2 {
		t.Fatalf("swept %d, want 2", n)
	}
	if st.Len() != 0 {
		t.Fatalf("len=%d after sweep, want 0", st.Len())
	}
}

func TestStoreSessionsIndependent(t *testing.T) {
	st := NewStore()
	a := st.Create(Config{})
	b := st.Create(Config{})
	if _, err := a.ApplyMove(four.P1, 0); err != nil {
		t.Fatal(err)
	}
	if snap := b.Snapshot(); snap.Board[5][0] != 0 {
		t.Fatal("a move in one game leaked into another")
	}
}
