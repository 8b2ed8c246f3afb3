package four

import "errors"

type Config struct {
	Rows int
	Cols int
}

const (
	DefaultRows = 6
	DefaultCols = 7
)

type Player byte

const (
	Empty Player = 0
	P1    Player = 1
	P2    Player = 2
)

func (p Player) Valid() bool {
	return p == P1 || p == P2
}

func (p Player) Other() Player {
	switch p {
	case P1:
		return P2
	case P2:
		return P1
	}
	panic("no opponent for an empty cell")
}

func (p Player) String() string {
	switch p {
	case P1:
		return "player1"
	case P2:
		return "player2"
	default:
		return "empty"
	}
}

var (
	ErrInvalidColumn = errors.New("invalid column")
	ErrColumnFull    = errors.New("column is full")
)

// Move records one placed disc: the column chosen, the row the disc
// settled in, and the player who dropped it.
type Move struct {
	Col    int
	Row    int
	Player Player
}

// Grid is the playing surface. Cells are stored row-major with row 0
// at the top; discs land at the highest-index empty row of their
// column. fill[c] always equals the number of discs in column c.
type Grid struct {
	cfg   Config
	cells []Player
	fill  []int
	count int
}

func New(cfg Config) *Grid {
	if cfg.Rows == 0 {
		cfg.Rows = DefaultRows
	}
	if cfg.Cols == 0 {
		cfg.Cols = DefaultCols
	}
	if cfg.Rows < 4 || cfg.Cols < 4 {
		panic("grid too small to fit a run of four")
	}
	return &Grid{
		cfg:   cfg,
		cells: make([]Player, cfg.Rows*cfg.Cols),
		fill:  make([]int, cfg.Cols),
	}
}

func (g *Grid) Rows() int      { return g.cfg.Rows }
func (g *Grid) Cols() int      { return g.cfg.Cols }
func (g *Grid) Config() Config { return g.cfg }

func (g *Grid) At(row, col int) Player {
	if row < 0 || row >= g.cfg.Rows || col < 0 || col >= g.cfg.Cols {
		panic("cell out of range")
	}
	return g.cells[row*g.cfg.Cols+col]
}

// Place drops a disc for p into col and returns the row it landed in.
// The grid is left untouched on error.
func (g *Grid) Place(col int, p Player) (int, error) {
	if !p.Valid() {
		panic("placing an empty cell")
	}
	if col < 0 || col >= g.cfg.Cols {
		return 0, ErrInvalidColumn
	}
	if g.fill[col] == g.cfg.Rows {
		return 0, ErrColumnFull
	}
	row := g.cfg.Rows - 1 - g.fill[col]
	g.cells[row*g.cfg.Cols+col] = p
	g.fill[col]++
	g.count++
	return row, nil
}

// Lift removes the topmost disc of col. It exists so a search can try
// a column and restore the grid without copying it; callers must only
// undo placements they made themselves.
func (g *Grid) Lift(col int) {
	if col < 0 || col >= g.cfg.Cols || g.fill[col] == 0 {
		panic("lift from an empty column")
	}
	g.fill[col]--
	g.count--
	row := g.cfg.Rows - 1 - g.fill[col]
	g.cells[row*g.cfg.Cols+col] = Empty
}

func (g *Grid) ColumnFree(col int) bool {
	return col >= 0 && col < g.cfg.Cols && g.fill[col] < g.cfg.Rows
}

// Fill reports the number of discs in col.
func (g *Grid) Fill(col int) int {
	if col < 0 || col >= g.cfg.Cols {
		panic("column out of range")
	}
	return g.fill[col]
}

func (g *Grid) Full() bool {
	return g.count == len(g.cells)
}

// Count reports the total number of discs on the grid.
func (g *Grid) Count() int {
	return g.count
}

func (g *Grid) Clone() *Grid {
	n := &Grid{
		cfg:   g.cfg,
		cells: make([]Player, len(g.cells)),
		fill:  make([]int, len(g.fill)),
		count: g.count,
	}
	copy(n.cells, g.cells)
	copy(n.fill, g.fill)
	return n
}

func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = Empty
	}
	for i := range g.fill {
		g.fill[i] = 0
	}
	g.count = 0
}

// Board renders the cells as rows of 0/1/2 values, top row first.
func (g *Grid) Board() [][]int {
	out := make([][]int, g.cfg.Rows)
	for r := 0; r < g.cfg.Rows; r++ {
		row := make([]int, g.cfg.Cols)
		for c := 0; c < g.cfg.Cols; c++ {
			row[c] = int(g.cells[r*g.cfg.Cols+c])
		}
		out[r] = row
	}
	return out
}
