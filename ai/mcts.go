package ai

import (
	"log"
	"math"
	"math/rand"
	"time"

	"golang.org/x/net/context"

	"github.com/nelhage/fourline/four"
)

type MCTSConfig struct {
	// Limit is the number of playouts per move. Counting playouts
	// instead of wall time keeps seeded runs reproducible.
	Limit int
	C     float64
	Seed  int64
	Debug int
}

type MonteCarloAI struct {
	cfg MCTSConfig
	r   *rand.Rand
}

type tree struct {
	grid   *four.Grid
	col    int
	mover  four.Player
	toMove four.Player
	out    four.Outcome

	simulations int
	wins        int

	parent   *tree
	children []*tree
}

func NewMonteCarlo(cfg MCTSConfig) *MonteCarloAI {
	if cfg.Limit <= 0 {
		cfg.Limit = 2000
	}
	if cfg.C <= 0 {
		cfg.C = 0.7
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MonteCarloAI{
		cfg: cfg,
		r:   rand.New(rand.NewSource(seed)),
	}
}

func (ai *MonteCarloAI) SelectColumn(ctx context.Context, g *four.Grid, p four.Player) (int, error) {
	root := &tree{
		grid:   g.Clone(),
		toMove: p,
	}
	ai.populate(root)
	if len(root.children) == 0 {
		return 0, ErrNoLegalMove
	}
	start := time.Now()
	for i := 0; i < ai.cfg.Limit; i++ {
		if i%128 == 0 && ctx.Err() != nil {
			break
		}
		node := ai.descend(root)
		winner := ai.evaluate(node)
		ai.update(node, winner)
		ai.populate(node)
	}
	best := root.children[0]
	for _, c := range root.children {
		if ai.cfg.Debug > 2 {
			log.Printf("[mcts]  col=%d n=%d w=%d", c.col, c.simulations, c.wins)
		}
		if c.simulations > best.simulations {
			best = c
		}
	}
	if ai.cfg.Debug > 1 {
		log.Printf("[mcts] col=%d simulations=%d time=%s",
			best.col, root.simulations, time.Since(start))
	}
	return best.col, nil
}

func (ai *MonteCarloAI) populate(t *tree) {
	if t.out.Over() {
		return
	}
	t.children = make([]*tree, 0, t.grid.Cols())
	for col := 0; col < t.grid.Cols(); col++ {
		if !t.grid.ColumnFree(col) {
			continue
		}
		child := t.grid.Clone()
		row, err := child.Place(col, t.toMove)
		if err != nil {
			panic("free column did not accept a disc")
		}
		t.children = append(t.children, &tree{
			grid:   child,
			col:    col,
			mover:  t.toMove,
			toMove: t.toMove.Other(),
			out:    four.Scan(child, four.Move{Col: col, Row: row, Player: t.toMove}),
			parent: t,
		})
	}
}

func (ai *MonteCarloAI) descend(t *tree) *tree {
	if t.children == nil {
		return t
	}
	best := t.children[0]
	val := math.Inf(-1)
	for _, c := range t.children {
		var s float64
		if c.simulations == 0 {
			s = 10
		} else {
			s = float64(c.wins)/float64(c.simulations) +
				ai.cfg.C*math.Sqrt(math.Log(float64(t.simulations))/float64(c.simulations))
		}
		if s > val {
			best = c
			val = s
		}
	}
	return ai.descend(best)
}

// evaluate plays one random game from t and returns the winner, or
// Empty for a draw. Playouts always terminate: every drop fills a
// cell, and a full grid with no run of four is a draw.
func (ai *MonteCarloAI) evaluate(t *tree) four.Player {
	if t.out.Over() {
		return t.out.Winner
	}
	g := t.grid.Clone()
	toMove := t.toMove
	for {
		free := make([]int, 0, g.Cols())
		for col := 0; col < g.Cols(); col++ {
			if g.ColumnFree(col) {
				free = append(free, col)
			}
		}
		col := free[ai.r.Intn(len(free))]
		row, _ := g.Place(col, toMove)
		out := four.Scan(g, four.Move{Col: col, Row: row, Player: toMove})
		if out.Over() {
			return out.Winner
		}
		toMove = toMove.Other()
	}
}

func (ai *MonteCarloAI) update(t *tree, winner four.Player) {
	for t != nil {
		t.simulations++
		if winner == t.mover {
			t.wins++
		}
		t = t.parent
	}
}
