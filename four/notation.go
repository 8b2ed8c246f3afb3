package four

import "fmt"

// Compact game notation: one digit per move, each digit the column
// dropped into, players alternating from the starting player. "0011223"
// is the quickest horizontal win. The form only exists for grids of at
// most ten columns, which covers every configuration in use.

// ParseDrops decodes a digit string into a column sequence, validating
// each column against cfg.
func ParseDrops(cfg Config, s string) ([]int, error) {
	if cfg.Cols == 0 {
		cfg.Cols = DefaultCols
	}
	if cfg.Cols > 10 {
		return nil, fmt.Errorf("no digit notation for %d columns", cfg.Cols)
	}
	drops := make([]int, 0, len(s))
	for i, r := range s {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("bad drop %q at move %d", r, i+1)
		}
		col := int(r - '0')
		if col >= cfg.Cols {
			return nil, fmt.Errorf("column %d out of range at move %d", col, i+1)
		}
		drops = append(drops, col)
	}
	return drops, nil
}

// FormatDrops renders a column sequence as a digit string.
func FormatDrops(cfg Config, cols []int) (string, error) {
	if cfg.Cols == 0 {
		cfg.Cols = DefaultCols
	}
	if cfg.Cols > 10 {
		return "", fmt.Errorf("no digit notation for %d columns", cfg.Cols)
	}
	buf := make([]byte, len(cols))
	for i, c := range cols {
		if c < 0 || c >= cfg.Cols {
			return "", fmt.Errorf("column %d out of range at move %d", c, i+1)
		}
		buf[i] = byte('0' + c)
	}
	return string(buf), nil
}

// Replay applies a column sequence to a fresh grid, players alternating
// from start. It returns the grid, the move list, and the outcome after
// the final drop. Replay fails on an illegal drop or on a drop made
// after the game ended, so a recorded game that replays cleanly is
// known to be legal.
func Replay(cfg Config, drops []int, start Player) (*Grid, []Move, Outcome, error) {
	if !start.Valid() {
		start = P1
	}
	g := New(cfg)
	var out Outcome
	moves := make([]Move, 0, len(drops))
	p := start
	for i, col := range drops {
		if out.Over() {
			return nil, nil, Outcome{}, fmt.Errorf("drop %d after the game ended", i+1)
		}
		row, err := g.Place(col, p)
		if err != nil {
			return nil, nil, Outcome{}, fmt.Errorf("drop %d in column %d: %w", i+1, col, err)
		}
		mv := Move{Col: col, Row: row, Player: p}
		moves = append(moves, mv)
		out = Scan(g, mv)
		p = p.Other()
	}
	return g, moves, out, nil
}
