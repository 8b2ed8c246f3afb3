package corpus

import (
	"context"
	"testing"
	"time"

	"github.com/nelhage/fourline/four"
)

func TestGenerateGames(t *testing.T) {
	c := &Command{
		games:   3,
		threads: 2,
		seed:    5,
		epsilon: 0.9,
		depth:   2,
	}
	ch := make(chan []int)
	go c.generateGames(context.Background(), four.Config{}, ch)

	var n int
	for drops := range ch {
		n++
		_, _, out, err := four.Replay(four.Config{}, drops, four.P1)
		if err != nil {
			t.Fatalf("generated game does not replay: %v", err)
		}
		if !out.Over() {
			t.Errorf("generated game not played out: %d plies", len(drops))
		}
	}
	if n != 3 {
		t.Errorf("generated %d games, want 3", n)
	}
}

func TestBoardKey(t *testing.T) {
	a := four.New(four.Config{})
	b := four.New(four.Config{})
	if boardKey(a) != boardKey(b) {
		t.Error("empty grids want equal keys")
	}
	a.Place(3, four.P1)
	if boardKey(a) == boardKey(b) {
		t.Error("distinct grids share a key")
	}
	b.Place(3, four.P1)
	if boardKey(a) != boardKey(b) {
		t.Error("same drops want equal keys")
	}
}

func TestCanonicalKey(t *testing.T) {
	a := four.New(four.Config{})
	a.Place(0, four.P1)
	a.Place(1, four.P2)

	m := four.New(four.Config{})
	m.Place(6, four.P1)
	m.Place(5, four.P2)

	if boardKey(a) == boardKey(m) {
		t.Fatal("mirrored grids share a raw key")
	}
	if canonicalKey(a) != canonicalKey(m) {
		t.Errorf("mirrored grids differ: %q vs %q", canonicalKey(a), canonicalKey(m))
	}

	center := four.New(four.Config{})
	center.Place(3, four.P1)
	if canonicalKey(center) != boardKey(center) {
		t.Error("self-mirrored grid wants its own key")
	}
}

func TestEvaluateScoresWin(t *testing.T) {
	c := &Command{threads: 1, scoreDepth: 4, limit: 5 * time.Second}

	// Player 1 threatens 0-1-2 on the bottom row; to move, the win is
	// one drop away and must score +1.
	drops, err := four.ParseDrops(four.Config{}, "001122")
	if err != nil {
		t.Fatal(err)
	}
	positions := map[string][]int{"k": drops}
	results := make(chan entry)
	go c.evaluate(four.Config{}, positions, results)

	var got []entry
	for e := range results {
		got = append(got, e)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	e := got[0]
	if e.mover != four.P1 {
		t.Errorf("mover=%s, want player1", e.mover)
	}
	if e.col != 3 {
		t.Errorf("col=%d, want the winning column 3", e.col)
	}
	if e.value != 1.0 {
		t.Errorf("value=%v, want 1", e.value)
	}
}
