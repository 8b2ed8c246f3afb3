package ai

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nelhage/fourline/four"
	"github.com/nelhage/fourline/fourtest"
)

func TestWindowCounts(t *testing.T) {
	cases := []struct {
		drops  string
		player four.Player
		threes int64
		twos   int64
	}{
		{"", four.P1, 0, 0},
		{"001122", four.P1, 1, 1},
		{"001122", four.P2, 1, 1},
		{"010101", four.P1, 1, 1},
		{"3041", four.P1, 0, 2},
		{"3041", four.P2, 0, 0},
		{"06163", four.P1, 1, 1},
		{"06163", four.P2, 0, 1},
	}
	for i, tc := range cases {
		g := fourtest.Grid(tc.drops)
		threes, twos := windowCounts(g, tc.player)
		if threes != tc.threes || twos != tc.twos {
			t.Errorf("%d: %q %s: got (%d,%d), want (%d,%d)",
				i, tc.drops, tc.player, threes, twos, tc.threes, tc.twos)
		}
	}
}

func TestEvaluateScores(t *testing.T) {
	cases := []struct {
		drops  string
		player four.Player
		score  int64
	}{
		{"", four.P1, 0},
		{"3", four.P1, 120},
		{"3", four.P2, -120},
		{"001122", four.P1, 0},
		{"3041", four.P1, 240},
		{"06163", four.P1, 420},
		{"06163", four.P2, -420},
	}
	for i, tc := range cases {
		g := fourtest.Grid(tc.drops)
		v := DefaultEvaluate(g, tc.player)
		if v != tc.score {
			t.Errorf("%d: %q %s: got %d, want %d", i, tc.drops, tc.player, v, tc.score)
		}
		if o := DefaultEvaluate(g, tc.player.Other()); o != -v {
			t.Errorf("%d: %q: not zero-sum: %d vs %d", i, tc.drops, v, o)
		}
	}
}

func TestMakeEvaluator(t *testing.T) {
	threesOnly := MakeEvaluator(&Weights{Three: 1})
	if v := threesOnly(fourtest.Grid("06163"), four.P1); v != 1 {
		t.Errorf("threes-only eval: got %d, want 1", v)
	}
	if v := MakeEvaluator(nil)(fourtest.Grid("3041"), four.P1); v != 240 {
		t.Errorf("nil weights: got %d, want 240", v)
	}

	w := Weights{Center: 7}
	eval := MakeEvaluator(&w)
	w.Center = 0
	if v := eval(fourtest.Grid("3"), four.P1); v != 7 {
		t.Errorf("evaluator shares caller weights: got %d, want 7", v)
	}
}

func TestExplainScore(t *testing.T) {
	var buf bytes.Buffer
	ExplainScore(nil, &buf, fourtest.Grid("06163"))
	out := buf.String()
	for _, want := range []string{"player1", "player2", "open threes", "score"} {
		if !strings.Contains(out, want) {
			t.Errorf("explain output missing %q:\n%s", want, out)
		}
	}
}
