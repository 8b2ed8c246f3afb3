package analyze

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"context"

	"github.com/google/subcommands"

	"github.com/nelhage/fourline/ai"
	"github.com/nelhage/fourline/cli"
	"github.com/nelhage/fourline/cmd/internal/opt"
	"github.com/nelhage/fourline/four"
)

type Command struct {
	/* Output options */
	quiet      bool
	monteCarlo bool
	cpuProfile string
	memProfile string

	/* Options to select which position(s) to analyze */
	db        string
	id        string
	drops     string
	move      int
	all       bool
	variation string

	/* Options which apply to all engines */
	timeLimit time.Duration

	/* Options for the minimax engine */
	eval    bool
	explain bool
	mmopt   opt.Minimax

	/* MCTS options */
	simulations int
	c           float64
}

func (*Command) Name() string     { return "analyze" }
func (*Command) Synopsis() string { return "Evaluate a position from a recorded game" }
func (*Command) Usage() string {
	return `analyze -drops 334251 [options]
analyze -db games.db -id game_xxx [options]

Evaluate a position from a recorded game using a configurable engine.

By default evaluates the position after the final drop; use -move to
select an earlier ply, -all to walk the whole game, and -variation to
play additional drops prior to analysis.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.BoolVar(&c.quiet, "quiet", false, "don't print board diagrams")
	flags.BoolVar(&c.monteCarlo, "mcts", false, "Use the MCTS evaluator")

	flags.StringVar(&c.cpuProfile, "cpuprofile", "", "write CPU profile")
	flags.StringVar(&c.memProfile, "memprofile", "", "write memory profile")

	flags.StringVar(&c.db, "db", "", "database to load the game from")
	flags.StringVar(&c.id, "id", "", "game id to load from -db")
	flags.StringVar(&c.drops, "drops", "", "game in drop notation")
	flags.IntVar(&c.move, "move", 0, "analyze the position after this many drops")
	flags.BoolVar(&c.all, "all", false, "analyze every position in the game")
	flags.StringVar(&c.variation, "variation", "", "apply the listed drops after the given position")

	flags.DurationVar(&c.timeLimit, "limit", time.Minute, "limit of how much time to use")
	flags.BoolVar(&c.eval, "evaluate", false, "only show static evaluation")
	flags.BoolVar(&c.explain, "explain", false, "explain scoring")

	c.mmopt.AddFlags(flags)

	flags.IntVar(&c.simulations, "mcts.limit", 0, "MCTS playouts per position")
	flags.Float64Var(&c.c, "mcts.c", 0.7, "MCTS explore/exploit tradeoff constant")
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, drops := c.load()

	if c.cpuProfile != "" {
		f, e := os.OpenFile(c.cpuProfile, os.O_WRONLY|os.O_CREATE, 0644)
		if e != nil {
			log.Fatalf("open cpu-profile: %s: %v", c.cpuProfile, e)
		}
		pprof.StartCPUProfile(f)
		defer f.Close()
		defer pprof.StopCPUProfile()
	}
	if c.memProfile != "" {
		f, e := os.OpenFile(c.memProfile, os.O_WRONLY|os.O_CREATE, 0644)
		if e != nil {
			log.Fatalf("open memory profile: %s: %v", c.memProfile, e)
		}
		defer func() {
			pprof.Lookup("allocs").WriteTo(f, 0)
			f.Close()
		}()
	}

	if c.all {
		an := c.buildAnalysis()
		g := four.New(cfg)
		toMove := four.P1
		for i, col := range drops {
			fmt.Printf("%d. %s drops %d\n", i+1, toMove, col)
			c.analyzeWith(an, g, toMove)
			row, e := g.Place(col, toMove)
			if e != nil {
				log.Fatalf("drop %d: %v", i+1, e)
			}
			if out := four.Scan(g, four.Move{Col: col, Row: row, Player: toMove}); out.Over() {
				fmt.Printf("game over: %s\n", describe(out))
				break
			}
			toMove = toMove.Other()
		}
		return subcommands.ExitSuccess
	}

	ply := len(drops)
	if c.move != 0 {
		ply = c.move
	}
	if ply < 0 || ply > len(drops) {
		log.Fatalf("-move %d out of range: game has %d drops", ply, len(drops))
	}
	prefix := drops[:ply]
	if c.variation != "" {
		extra, e := four.ParseDrops(cfg, c.variation)
		if e != nil {
			log.Fatal("-variation: ", e)
		}
		prefix = append(append([]int{}, prefix...), extra...)
	}
	g, _, out, e := four.Replay(cfg, prefix, four.P1)
	if e != nil {
		log.Fatal("replay: ", e)
	}
	toMove := mover(four.P1, len(prefix))
	if out.Over() {
		if !c.quiet {
			cli.RenderGrid(nil, os.Stdout, g, toMove)
		}
		fmt.Printf("game over: %s\n", describe(out))
		return subcommands.ExitSuccess
	}
	c.analyzeWith(c.buildAnalysis(), g, toMove)
	return subcommands.ExitSuccess
}

// load resolves the game source flags into a grid config and a column
// sequence.
func (c *Command) load() (four.Config, []int) {
	switch {
	case c.drops != "" && c.db != "":
		log.Fatal("-drops and -db are exclusive")
	case c.drops != "":
		cfg := four.Config{}
		drops, e := four.ParseDrops(cfg, c.drops)
		if e != nil {
			log.Fatal("parse: ", e)
		}
		return cfg, drops
	case c.db != "":
		if c.id == "" {
			log.Fatal("-db requires -id")
		}
		repo, e := opt.OpenRepository(c.db)
		if e != nil {
			log.Fatalf("open %q: %v", c.db, e)
		}
		defer repo.Close()
		g, e := repo.Game(c.id)
		if e != nil {
			log.Fatalf("load %q: %v", c.id, e)
		}
		cfg := four.Config{Rows: g.Rows, Cols: g.Cols}
		drops, e := four.ParseDrops(cfg, g.Drops)
		if e != nil {
			log.Fatalf("%s: bad drops %q: %v", g.ID, g.Drops, e)
		}
		fmt.Printf("%s: %s winner=%d moves=%d\n", g.ID, g.Result, g.Winner, g.Moves)
		return cfg, drops
	}
	log.Fatal("need a game: -drops or -db/-id")
	return four.Config{}, nil
}

func mover(start four.Player, ply int) four.Player {
	if ply%2 == 1 {
		return start.Other()
	}
	return start
}

func describe(out four.Outcome) string {
	if out.Status == four.Draw {
		return "draw"
	}
	return fmt.Sprintf("%s wins", out.Winner)
}

func (c *Command) buildAnalysis() Analyzer {
	if c.monteCarlo {
		return &monteCarloAnalysis{
			cmd: c,
			ai: ai.NewMonteCarlo(ai.MCTSConfig{
				Seed:  c.mmopt.Seed,
				Debug: c.mmopt.Debug,
				Limit: c.simulations,
				C:     c.c,
			}),
		}
	}
	mm, e := ai.NewMinimax(c.mmopt.BuildConfig())
	if e != nil {
		log.Fatal("minimax: ", e)
	}
	return &minimaxAnalysis{cmd: c, ai: mm}
}

func (c *Command) analyzeWith(an Analyzer, g *four.Grid, toMove four.Player) {
	ctx := context.Background()
	if c.timeLimit != 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, c.timeLimit)
		defer cancel()
	}
	an.Analyze(ctx, g, toMove)
}
