package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nelhage/fourline/four"
)

type Player interface {
	GetColumn(g *four.Grid, p four.Player) int
}

// Glyphs selects the characters used to draw each cell.
type Glyphs struct {
	Player1 string
	Player2 string
	Empty   string
}

type CLI struct {
	moves []four.Move
	g     *four.Grid

	Config  four.Config
	Glyphs  *Glyphs
	Out     io.Writer
	Player1 Player
	Player2 Player
}

var DefaultGlyphs = Glyphs{
	Player1: "X",
	Player2: "O",
	Empty:   ".",
}

var UnicodeGlyphs = Glyphs{
	Player1: "●",
	Player2: "○",
	Empty:   "·",
}

func (c *CLI) Play() four.Outcome {
	c.moves = nil
	c.g = four.New(c.Config)
	toMove := four.P1
	var out four.Outcome
	for {
		c.render(toMove)
		if out.Over() {
			fmt.Fprintf(c.Out, "Game Over! ")
			if out.Status == four.Draw {
				fmt.Fprintf(c.Out, "Draw.")
			} else {
				fmt.Fprintf(c.Out, "%s wins: %s", out.Winner, FormatCells(out.Cells))
			}
			fmt.Fprintf(c.Out, "\ndiscs played: %d\n", c.g.Count())
			return out
		}
		var col int
		if toMove == four.P1 {
			col = c.Player1.GetColumn(c.g, toMove)
		} else {
			col = c.Player2.GetColumn(c.g, toMove)
		}
		row, err := c.g.Place(col, toMove)
		if err != nil {
			fmt.Fprintln(c.Out, "illegal move:", err)
			continue
		}
		mv := four.Move{Col: col, Row: row, Player: toMove}
		c.moves = append(c.moves, mv)
		fmt.Fprintf(c.Out, "%d. %s drops %d", len(c.moves), toMove, col)
		out = four.Scan(c.g, mv)
		toMove = toMove.Other()
	}
}

func (c *CLI) Moves() []four.Move {
	return c.moves
}

// Grid exposes the played grid after Play returns.
func (c *CLI) Grid() *four.Grid {
	return c.g
}

// Drops renders the played game in drop notation.
func (c *CLI) Drops() string {
	cols := make([]int, len(c.moves))
	for i, mv := range c.moves {
		cols[i] = mv.Col
	}
	s, err := four.FormatDrops(c.g.Config(), cols)
	if err != nil {
		panic(err)
	}
	return s
}

func (c *CLI) render(toMove four.Player) {
	RenderGrid(c.Glyphs, c.Out, c.g, toMove)
}

func RenderGrid(gl *Glyphs, out io.Writer, g *four.Grid, toMove four.Player) {
	if gl == nil {
		gl = &DefaultGlyphs
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "[%s to play]\n", toMove)
	w := tabwriter.NewWriter(out, 2, 4, 1, ' ', 0)
	for r := 0; r < g.Rows(); r++ {
		fmt.Fprintf(w, "%d.\t", g.Rows()-r)
		for c := 0; c < g.Cols(); c++ {
			var s string
			switch g.At(r, c) {
			case four.P1:
				s = gl.Player1
			case four.P2:
				s = gl.Player2
			default:
				s = gl.Empty
			}
			fmt.Fprintf(w, "%s\t", s)
		}
		fmt.Fprintf(w, "\n")
	}
	fmt.Fprintf(w, "\t")
	for c := 0; c < g.Cols(); c++ {
		fmt.Fprintf(w, "%d.\t", c)
	}
	fmt.Fprintf(w, "\n")
	w.Flush()
	fmt.Fprintf(out, "discs: %d/%d\n", g.Count(), g.Rows()*g.Cols())
}

// FormatCells renders winning cells as "(row,col)" pairs.
func FormatCells(cells []four.Cell) string {
	parts := make([]string, len(cells))
	for i, cl := range cells {
		parts[i] = fmt.Sprintf("(%d,%d)", cl.Row, cl.Col)
	}
	return strings.Join(parts, " ")
}
