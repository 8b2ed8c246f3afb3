package cli

import (
	"bufio"
	"bytes"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/nelhage/fourline/four"
)

type script struct {
	cols []int
	i    int
}

func (s *script) GetColumn(g *four.Grid, p four.Player) int {
	col := s.cols[s.i]
	s.i++
	return col
}

func TestPlayToWin(t *testing.T) {
	var buf bytes.Buffer
	c := &CLI{
		Out:     &buf,
		Player1: &script{cols: []int{0, 1, 2, 3}},
		Player2: &script{cols: []int{0, 1, 2}},
	}
	out := c.Play()
	if out.Status != four.Won || out.Winner != four.P1 {
		t.Fatalf("outcome: %+v", out)
	}
	if len(c.Moves()) != 7 {
		t.Errorf("moves: %d, want 7", len(c.Moves()))
	}
	if d := c.Drops(); d != "0011223" {
		t.Errorf("drops: %q", d)
	}
	rendered := buf.String()
	for _, want := range []string{"player1 to play", "Game Over!", "player1 wins", "(5,0)"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestPlayRejectsIllegal(t *testing.T) {
	var buf bytes.Buffer
	c := &CLI{
		Out:     &buf,
		Player1: &script{cols: []int{9, 0, 1, 2, 3}},
		Player2: &script{cols: []int{0, 1, 2}},
	}
	out := c.Play()
	if out.Status != four.Won || out.Winner != four.P1 {
		t.Fatalf("outcome: %+v", out)
	}
	if !strings.Contains(buf.String(), "illegal move:") {
		t.Error("no illegal move report")
	}
}

func TestCLIPlayerParsesColumn(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("x\n 4 \n"))
	p := NewCLIPlayer(ioutil.Discard, in)
	g := four.New(four.Config{})
	if col := p.GetColumn(g, four.P1); col != 4 {
		t.Errorf("column: %d, want 4", col)
	}
}

func TestRenderGridGlyphs(t *testing.T) {
	g := four.New(four.Config{})
	g.Place(3, four.P1)
	g.Place(3, four.P2)

	var buf bytes.Buffer
	RenderGrid(&UnicodeGlyphs, &buf, g, four.P1)
	got := buf.String()
	if !strings.Contains(got, UnicodeGlyphs.Player1) || !strings.Contains(got, UnicodeGlyphs.Player2) {
		t.Errorf("unicode render missing glyphs:\n%s", got)
	}
	if !strings.Contains(got, "discs: 2/42") {
		t.Errorf("render missing fill counter:\n%s", got)
	}
}
