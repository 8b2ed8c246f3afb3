package four

import "testing"

func TestParseDrops(t *testing.T) {
	drops, err := ParseDrops(Config{}, "0613")
	if err != nil {
		t.Fatal(err)
	}
	want := []int{0, 6, 1, 3}
	for i, d := range drops {
		if d != want[i] {
			t.Fatalf("drops = %v, want %v", drops, want)
		}
	}

	if _, err := ParseDrops(Config{}, "012x"); err == nil {
		t.Error("bad rune accepted")
	}
	if _, err := ParseDrops(Config{}, "07"); err == nil {
		t.Error("column 7 accepted on a 7-column grid")
	}
	if _, err := ParseDrops(Config{Cols: 11}, "0"); err == nil {
		t.Error("digit notation accepted for 11 columns")
	}
}

func TestFormatDrops(t *testing.T) {
	s, err := FormatDrops(Config{}, []int{0, 6, 1, 3})
	if err != nil {
		t.Fatal(err)
	}
	if s != "0613" {
		t.Fatalf("formatted %q", s)
	}
	if _, err := FormatDrops(Config{}, []int{7}); err == nil {
		t.Error("out-of-range column formatted")
	}
}

func TestReplay(t *testing.T) {
	g, moves, out, err := Replay(Config{}, []int{0, 0, 1, 1, 2, 2, 3}, P1)
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != Won || out.Winner != P1 {
		t.Fatalf("outcome = %v/%v", out.Status, out.Winner)
	}
	if len(moves) != 7 || moves[6] != (Move{Col: 3, Row: 5, Player: P1}) {
		t.Fatalf("moves = %v", moves)
	}
	if g.Count() != 7 {
		t.Fatalf("count = %d", g.Count())
	}

	// Drop after the game has ended.
	if _, _, _, err := Replay(Config{}, []int{0, 0, 1, 1, 2, 2, 3, 4}, P1); err == nil {
		t.Error("replay past a terminal state succeeded")
	}

	// Overfull column.
	if _, _, _, err := Replay(Config{}, []int{0, 0, 0, 0, 0, 0, 0}, P1); err == nil {
		t.Error("replay into a full column succeeded")
	}
}
