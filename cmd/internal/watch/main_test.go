package watch

import (
	"testing"

	"github.com/nelhage/fourline/four"
)

func TestFeedURL(t *testing.T) {
	cases := []struct {
		server string
		want   string
	}{
		{"http://localhost:8080", "ws://localhost:8080/api/game/game_x/watch"},
		{"https://example.com", "wss://example.com/api/game/game_x/watch"},
		{"ws://example.com:9000", "ws://example.com:9000/api/game/game_x/watch"},
	}
	for _, tc := range cases {
		got, err := feedURL(tc.server, "game_x")
		if err != nil {
			t.Errorf("feedURL(%q): %v", tc.server, err)
			continue
		}
		if got != tc.want {
			t.Errorf("feedURL(%q)=%q, want %q", tc.server, got, tc.want)
		}
	}
	if _, err := feedURL("ftp://example.com", "game_x"); err == nil {
		t.Error("ftp scheme accepted")
	}
}

func TestGridFromBoard(t *testing.T) {
	want := four.New(four.Config{})
	want.Place(3, four.P1)
	want.Place(3, four.P2)
	want.Place(0, four.P1)

	g := gridFromBoard(want.Board())
	if g.Count() != 3 {
		t.Fatalf("rebuilt %d discs, want 3", g.Count())
	}
	for r := 0; r < want.Rows(); r++ {
		for c := 0; c < want.Cols(); c++ {
			if g.At(r, c) != want.At(r, c) {
				t.Errorf("cell (%d,%d)=%s, want %s", r, c, g.At(r, c), want.At(r, c))
			}
		}
	}
}
