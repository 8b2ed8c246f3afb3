package ai

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nelhage/fourline/four"
)

type Weights struct {
	Three  int64
	Two    int64
	Center int64
}

var DefaultWeights = Weights{
	Three:  300,
	Two:    60,
	Center: 120,
}

type EvaluationFunc func(g *four.Grid, p four.Player) int64

// MakeEvaluator builds the static evaluation used at the search
// horizon, scored from p's point of view: every window of four cells
// holding three own discs and one empty counts Three, two own and two
// empty counts Two, and each own disc in the center column counts
// Center. The opponent's equivalents subtract the same weights, so the
// function is symmetric between the players.
func MakeEvaluator(w *Weights) EvaluationFunc {
	if w == nil {
		w = &DefaultWeights
	}
	ww := *w
	return func(g *four.Grid, p four.Player) int64 {
		return evaluate(&ww, g, p)
	}
}

var DefaultEvaluate = MakeEvaluator(&DefaultWeights)

func evaluate(w *Weights, g *four.Grid, me four.Player) int64 {
	mt, m2 := windowCounts(g, me)
	tt, t2 := windowCounts(g, me.Other())
	mc, tc := centerCounts(g, me)
	return w.Three*(mt-tt) + w.Two*(m2-t2) + w.Center*(mc-tc)
}

// windowCounts tallies p's open windows: threes are windows of four
// with three p discs and one empty cell, twos have two p discs and two
// empty cells. Windows containing an opposing disc can never complete
// and count for nothing.
func windowCounts(g *four.Grid, p four.Player) (threes, twos int64) {
	rows, cols := g.Rows(), g.Cols()
	for _, ax := range [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}} {
		dr, dc := ax[0], ax[1]
		for r := 0; r < rows; r++ {
			if r+3*dr >= rows {
				break
			}
			for c := 0; c < cols; c++ {
				end := c + 3*dc
				if end < 0 || end >= cols {
					continue
				}
				var own, empty int
				for i := 0; i < 4; i++ {
					switch g.At(r+i*dr, c+i*dc) {
					case p:
						own++
					case four.Empty:
						empty++
					}
				}
				switch {
				case own == 3 && empty == 1:
					threes++
				case own == 2 && empty == 2:
					twos++
				}
			}
		}
	}
	return threes, twos
}

func centerCounts(g *four.Grid, me four.Player) (mine, theirs int64) {
	col := g.Cols() / 2
	for r := 0; r < g.Rows(); r++ {
		switch g.At(r, col) {
		case me:
			mine++
		case me.Other():
			theirs++
		}
	}
	return mine, theirs
}

// ExplainScore renders the evaluation terms for both players.
func ExplainScore(w *Weights, out io.Writer, g *four.Grid) {
	if w == nil {
		w = &DefaultWeights
	}
	tw := tabwriter.NewWriter(out, 4, 8, 1, '\t', 0)
	t1, w1 := windowCounts(g, four.P1)
	t2, w2 := windowCounts(g, four.P2)
	c1, c2 := centerCounts(g, four.P1)
	fmt.Fprintf(tw, "\tplayer1\tplayer2\n")
	fmt.Fprintf(tw, "open threes\t%d\t%d\n", t1, t2)
	fmt.Fprintf(tw, "open twos\t%d\t%d\n", w1, w2)
	fmt.Fprintf(tw, "center\t%d\t%d\n", c1, c2)
	fmt.Fprintf(tw, "score\t%+d\t%+d\n", evaluate(w, g, four.P1), evaluate(w, g, four.P2))
	tw.Flush()
}
