package ai

import (
	"fmt"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"golang.org/x/net/context"

	"github.com/nelhage/fourline/four"
)

const (
	MaxEval      int64 = 1 << 30
	MinEval            = -MaxEval
	WinThreshold       = 1 << 29
)

type MinimaxConfig struct {
	Depth int
	Debug int
	Seed  int64

	// RandomizeTies picks among equal-valued root columns with the
	// seeded rng instead of taking the lowest index.
	RandomizeTies bool

	Evaluate EvaluationFunc
}

type MinimaxAI struct {
	cfg  MinimaxConfig
	rand *rand.Rand

	st       Stats
	evaluate EvaluationFunc

	// Per-depth scratch for principal variation lines, so the search
	// allocates nothing per node.
	stack []pvLine

	cancel *int32
}

type pvLine struct {
	pv []int
}

type Stats struct {
	Depth     int
	Visited   uint64
	Evaluated uint64
	Terminal  uint64
	CutNodes  uint64
}

func NewMinimax(cfg MinimaxConfig) (*MinimaxAI, error) {
	if cfg.Depth <= 0 {
		return nil, fmt.Errorf("minimax: depth %d out of range", cfg.Depth)
	}
	m := &MinimaxAI{cfg: cfg}
	m.evaluate = cfg.Evaluate
	if m.evaluate == nil {
		m.evaluate = DefaultEvaluate
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	m.rand = rand.New(rand.NewSource(seed))
	m.stack = make([]pvLine, cfg.Depth)
	for i := range m.stack {
		m.stack[i].pv = make([]int, 0, cfg.Depth)
	}
	return m, nil
}

func (m *MinimaxAI) SelectColumn(ctx context.Context, g *four.Grid, p four.Player) (int, error) {
	pv, _, _ := m.Analyze(ctx, g, p)
	if len(pv) == 0 {
		return 0, ErrNoLegalMove
	}
	return pv[0], nil
}

// Analyze searches to the configured depth and returns the principal
// variation, the root value from p's point of view, and node counts.
// The pv is empty iff the grid is full. Every root column is searched
// with a full window so exact values surface for the tie-break;
// alpha-beta pruning still applies inside each subtree. Cancelling ctx
// stops the search early with the best line found so far.
func (m *MinimaxAI) Analyze(ctx context.Context, g *four.Grid, p four.Player) ([]int, int64, Stats) {
	if !p.Valid() {
		panic("analyze for an empty player")
	}
	depth := m.cfg.Depth
	if free := g.Rows()*g.Cols() - g.Count(); depth > free {
		depth = free
	}
	m.st = Stats{Depth: depth}

	var cancel int32
	m.cancel = &cancel
	if done := ctx.Done(); done != nil {
		stop := make(chan struct{})
		defer close(stop)
		go func() {
			select {
			case <-done:
				atomic.StoreInt32(&cancel, 1)
			case <-stop:
			}
		}()
	}

	work := g.Clone()
	start := time.Now()
	m.st.Visited++

	var (
		found    bool
		bestVal  int64
		bestCols []int
		lines    [][]int
	)
	for col := 0; col < work.Cols(); col++ {
		if !work.ColumnFree(col) {
			continue
		}
		row, err := work.Place(col, p)
		if err != nil {
			panic("free column did not accept a disc")
		}
		out := four.Scan(work, four.Move{Col: col, Row: row, Player: p})
		var v int64
		var line []int
		switch {
		case out.Status == four.Won:
			m.st.Terminal++
			v = MaxEval - int64(work.Count())
		case out.Status == four.Draw:
			m.st.Terminal++
			v = 0
		case depth == 1:
			m.st.Evaluated++
			v = m.evaluate(work, p)
		default:
			line, v = m.negamax(work, p.Other(), depth-1, MinEval-1, MaxEval+1)
			v = -v
		}
		work.Lift(col)
		if m.cfg.Debug > 1 {
			log.Printf("[minimax]  root: col=%d val=%d", col, v)
		}
		switch {
		case !found || v > bestVal:
			found = true
			bestVal = v
			bestCols = append(bestCols[:0], col)
			lines = append(lines[:0], append([]int{col}, line...))
		case v == bestVal:
			bestCols = append(bestCols, col)
			lines = append(lines, append([]int{col}, line...))
		}
		if atomic.LoadInt32(m.cancel) != 0 {
			break
		}
	}
	if !found {
		return nil, 0, m.st
	}

	pick := 0
	if m.cfg.RandomizeTies && len(bestCols) > 1 {
		pick = m.rand.Intn(len(bestCols))
	}
	pv := lines[pick]
	if m.cfg.Debug > 0 {
		log.Printf("[minimax] search: depth=%d val=%d pv=%v ties=%d time=%s visited=%d evaluated=%d terminal=%d cuts=%d",
			depth, bestVal, pv, len(bestCols),
			time.Since(start),
			m.st.Visited,
			m.st.Evaluated,
			m.st.Terminal,
			m.st.CutNodes,
		)
	}
	return pv, bestVal, m.st
}

// negamax returns the best line and value for toMove, exploring depth
// further plies. The grid is mutated and restored in place; the
// returned line is backed by per-depth scratch and is only valid until
// the same depth is searched again.
func (m *MinimaxAI) negamax(g *four.Grid, toMove four.Player, depth int, α, β int64) ([]int, int64) {
	if g.Full() {
		panic("search of a full grid")
	}
	m.st.Visited++
	best := m.stack[depth].pv[:0]
	for col := 0; col < g.Cols(); col++ {
		if !g.ColumnFree(col) {
			continue
		}
		row, _ := g.Place(col, toMove)
		out := four.Scan(g, four.Move{Col: col, Row: row, Player: toMove})
		var v int64
		var line []int
		switch {
		case out.Status == four.Won:
			m.st.Terminal++
			v = MaxEval - int64(g.Count())
		case out.Status == four.Draw:
			m.st.Terminal++
			v = 0
		case depth == 1:
			m.st.Evaluated++
			v = m.evaluate(g, toMove)
		default:
			line, v = m.negamax(g, toMove.Other(), depth-1, -β, -α)
			v = -v
		}
		g.Lift(col)
		if len(best) == 0 || v > α {
			best = append(best[:0], col)
			best = append(best, line...)
		}
		if v > α {
			α = v
			if α >= β {
				m.st.CutNodes++
				break
			}
		}
		if atomic.LoadInt32(m.cancel) != 0 {
			break
		}
	}
	m.stack[depth].pv = best[:0:cap(best)]
	return best, α
}
