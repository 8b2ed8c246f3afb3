package analyze

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/nelhage/fourline/ai"
	"github.com/nelhage/fourline/cli"
	"github.com/nelhage/fourline/four"
)

type Analyzer interface {
	Analyze(ctx context.Context, g *four.Grid, toMove four.Player)
}

type minimaxAnalysis struct {
	cmd *Command
	ai  *ai.MinimaxAI
}

func (m *minimaxAnalysis) Analyze(ctx context.Context, g *four.Grid, toMove four.Player) {
	if !m.cmd.quiet {
		cli.RenderGrid(nil, os.Stdout, g, toMove)
		if m.cmd.explain {
			ai.ExplainScore(m.cmd.mmopt.BuildWeights(), os.Stdout, g)
		}
	}
	if m.cmd.eval {
		eval := ai.MakeEvaluator(m.cmd.mmopt.BuildWeights())
		fmt.Printf(" Val=%d\n", eval(g, toMove))
		return
	}
	pv, val, st := m.ai.Analyze(ctx, g, toMove)
	fmt.Printf("AI analysis:\n")
	fmt.Printf(" pv=%v\n", pv)
	fmt.Printf(" value=%d\n", val)
	fmt.Printf(" depth=%d visited=%d evaluated=%d terminal=%d cuts=%d\n",
		st.Depth, st.Visited, st.Evaluated, st.Terminal, st.CutNodes)
	fmt.Println()

	if len(pv) == 0 || m.cmd.quiet {
		return
	}

	work := g.Clone()
	p := toMove
	for _, col := range pv {
		row, e := work.Place(col, p)
		if e != nil {
			log.Printf("illegal drop in pv: %d: %v", col, e)
			return
		}
		out := four.Scan(work, four.Move{Col: col, Row: row, Player: p})
		p = p.Other()
		if out.Over() {
			break
		}
	}
	fmt.Println("Resulting position:")
	cli.RenderGrid(nil, os.Stdout, work, p)
	if m.cmd.explain {
		ai.ExplainScore(m.cmd.mmopt.BuildWeights(), os.Stdout, work)
	}
	fmt.Println()
}

type monteCarloAnalysis struct {
	cmd *Command
	ai  *ai.MonteCarloAI
}

func (m *monteCarloAnalysis) Analyze(ctx context.Context, g *four.Grid, toMove four.Player) {
	if !m.cmd.quiet {
		cli.RenderGrid(nil, os.Stdout, g, toMove)
	}
	col, err := m.ai.SelectColumn(ctx, g, toMove)
	if err != nil {
		log.Printf("mcts: %v", err)
		return
	}
	fmt.Printf("AI analysis:\n")
	fmt.Printf(" drop=%d\n\n", col)
}
