package four

import (
	"encoding/json"
	"fmt"
)

type Status byte

const (
	Playing Status = iota
	Won
	Draw
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Draw:
		return "draw"
	}
	panic("bad status")
}

// Cell identifies one grid coordinate. It marshals as the two-element
// array [row, col] used on the wire.
type Cell struct {
	Row int
	Col int
}

func (c Cell) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%d,%d]", c.Row, c.Col)), nil
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	var pair [2]int
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("cell: want [row,col]: %w", err)
	}
	c.Row, c.Col = pair[0], pair[1]
	return nil
}

// Outcome classifies a grid state. Cells holds exactly four
// coordinates when Status is Won and is empty otherwise.
type Outcome struct {
	Status Status
	Winner Player
	Cells  []Cell
}

func (o Outcome) Over() bool {
	return o.Status != Playing
}

// The four axes through a cell, as (row, col) deltas. Scans run in
// this order and report the first winning axis: horizontal, vertical,
// then the two diagonals.
var axes = [4]struct{ dr, dc int }{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// Scan classifies the grid after mv was placed, examining only the
// four axes through the placed cell. Each axis costs O(run length),
// not O(rows*cols).
func Scan(g *Grid, mv Move) Outcome {
	if mv.Player == Empty || g.At(mv.Row, mv.Col) != mv.Player {
		panic("scan of a move not on the grid")
	}
	for _, ax := range axes {
		if cells, ok := runThrough(g, mv, ax.dr, ax.dc); ok {
			return Outcome{Status: Won, Winner: mv.Player, Cells: cells}
		}
	}
	if g.Full() {
		return Outcome{Status: Draw}
	}
	return Outcome{Status: Playing}
}

// runThrough extends from the placed cell in both directions along
// (dr, dc). If the contiguous run reaches four it reports the four
// cells nearest the placed cell: with the run enumerated from its
// negative-direction end, the placed cell at index k, and run length
// n, the reported window starts at max(0, min(k-3, n-4)). The window
// always contains the placed cell and prefers the lower-index end.
func runThrough(g *Grid, mv Move, dr, dc int) ([]Cell, bool) {
	back := 0
	for r, c := mv.Row-dr, mv.Col-dc; inRange(g, r, c) && g.At(r, c) == mv.Player; r, c = r-dr, c-dc {
		back++
	}
	fwd := 0
	for r, c := mv.Row+dr, mv.Col+dc; inRange(g, r, c) && g.At(r, c) == mv.Player; r, c = r+dr, c+dc {
		fwd++
	}
	n := back + 1 + fwd
	if n < 4 {
		return nil, false
	}
	start := back - 3
	if start < 0 {
		start = 0
	}
	if start > n-4 {
		start = n - 4
	}
	r0 := mv.Row + (start-back)*dr
	c0 := mv.Col + (start-back)*dc
	cells := make([]Cell, 4)
	for i := range cells {
		cells[i] = Cell{Row: r0 + i*dr, Col: c0 + i*dc}
	}
	return cells, true
}

func inRange(g *Grid, r, c int) bool {
	return r >= 0 && r < g.cfg.Rows && c >= 0 && c < g.cfg.Cols
}

// ScanFull classifies the whole grid with no knowledge of the last
// move. Each axis is walked once per cell: only run starts (cells with
// no same-player predecessor along the axis) are extended, so no run
// is counted twice. The first winning run in horizontal, vertical,
// diagonal order is reported with its first four cells, matching the
// traversal of the original full-board checker. Used to cross-check
// Scan and to classify imported positions.
func ScanFull(g *Grid) Outcome {
	for _, ax := range axes {
		for r := 0; r < g.cfg.Rows; r++ {
			for c := 0; c < g.cfg.Cols; c++ {
				p := g.At(r, c)
				if p == Empty {
					continue
				}
				if inRange(g, r-ax.dr, c-ax.dc) && g.At(r-ax.dr, c-ax.dc) == p {
					continue // not a run start
				}
				run := 0
				for rr, cc := r, c; inRange(g, rr, cc) && g.At(rr, cc) == p; rr, cc = rr+ax.dr, cc+ax.dc {
					run++
				}
				if run >= 4 {
					cells := make([]Cell, 4)
					for i := range cells {
						cells[i] = Cell{Row: r + i*ax.dr, Col: c + i*ax.dc}
					}
					return Outcome{Status: Won, Winner: p, Cells: cells}
				}
			}
		}
	}
	if g.Full() {
		return Outcome{Status: Draw}
	}
	return Outcome{Status: Playing}
}
