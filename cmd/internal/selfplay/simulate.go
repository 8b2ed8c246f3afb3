package selfplay

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/nelhage/fourline/ai"
	"github.com/nelhage/fourline/cmd/internal/opt"
	"github.com/nelhage/fourline/four"
)

type Config struct {
	Games int

	Verbose bool

	// Openings holds drop-notation prefixes; every game starts from
	// one of them. Empty means all games start from an empty grid.
	Openings []string

	P1, P2 string

	Rows, Cols int

	Swap    bool
	Threads int
	Cutoff  int
	Limit   time.Duration

	Opt opt.Minimax
}

type Stats struct {
	Players [2]struct {
		Wins       int
		FirstWins  int
		SecondWins int
	}
	First, Second int
	Ties          int
	Cutoff        int

	Games []Result `json:"-"`
}

func (s *Stats) Count() int {
	return s.First + s.Second + s.Ties + s.Cutoff
}

func (s *Stats) Merge(other *Stats) Stats {
	out := *s
	for i := range out.Players {
		out.Players[i].Wins += other.Players[i].Wins
		out.Players[i].FirstWins += other.Players[i].FirstWins
		out.Players[i].SecondWins += other.Players[i].SecondWins
	}
	out.First += other.First
	out.Second += other.Second
	out.Ties += other.Ties
	out.Cutoff += other.Cutoff
	return out
}

type gameSpec struct {
	c       *Config
	opening []int
	oi      int
	i       int
	seed    int64
	p1disc  four.Player
}

type Result struct {
	spec  gameSpec
	Grid  *four.Grid
	Moves []four.Move
	Out   four.Outcome
}

// Drops renders the game, opening included, in column notation.
func (r *Result) Drops() string {
	cols := make([]int, len(r.Moves))
	for i, mv := range r.Moves {
		cols[i] = mv.Col
	}
	s, err := four.FormatDrops(r.Grid.Config(), cols)
	if err != nil {
		panic(err)
	}
	return s
}

func Simulate(c *Config) Stats {
	var st Stats
	rc := make(chan Result)
	go startGames(c, rc)
	for r := range rc {
		if c.Verbose {
			log.Printf("[selfplay] game n=%d/%d plies=%d p1=%s status=%s winner=%s",
				r.spec.oi, r.spec.i, len(r.Moves), r.spec.p1disc, r.Out.Status, r.Out.Winner)
		}
		switch {
		case r.Out.Status == four.Won && r.Out.Winner == four.P1:
			st.First++
		case r.Out.Status == four.Won && r.Out.Winner == four.P2:
			st.Second++
		case r.Out.Status == four.Draw:
			st.Ties++
		default:
			st.Cutoff++
		}
		if r.Out.Status == four.Won {
			pst := &st.Players[0]
			if r.Out.Winner != r.spec.p1disc {
				pst = &st.Players[1]
			}
			pst.Wins++
			if r.Out.Winner == four.P1 {
				pst.FirstWins++
			} else {
				pst.SecondWins++
			}
		}
		st.Games = append(st.Games, r)
	}
	return st
}

func (c *Config) gridConfig() four.Config {
	return four.Config{Rows: c.Rows, Cols: c.Cols}
}

func startGames(c *Config, rc chan<- Result) {
	gc := make(chan gameSpec)
	var wg sync.WaitGroup
	wg.Add(c.Threads)
	for i := 0; i < c.Threads; i++ {
		go func() {
			worker(c, gc, rc)
			wg.Done()
		}()
	}
	r := rand.New(rand.NewSource(c.Opt.Seed))
	openings := c.Openings
	if len(openings) == 0 {
		openings = []string{""}
	}
	for oi, opening := range openings {
		drops, err := four.ParseDrops(c.gridConfig(), opening)
		if err != nil {
			log.Fatalf("opening %q: %v", opening, err)
		}
		n := c.Games
		if c.Swap {
			n *= 2
		}
		for g := 0; g < n; g++ {
			p1disc := four.P1
			if c.Swap && g%2 == 1 {
				p1disc = four.P2
			}
			gc <- gameSpec{
				c:       c,
				opening: drops,
				oi:      oi,
				i:       g,
				seed:    r.Int63(),
				p1disc:  p1disc,
			}
		}
	}
	close(gc)
	wg.Wait()
	close(rc)
}

// worker rebuilds both selectors for each game from the game's own
// seed, so results do not depend on which thread picks a game up.
func worker(c *Config, games <-chan gameSpec, out chan<- Result) {
	for g := range games {
		mm := c.Opt
		mm.Seed = g.seed
		p1 := buildSelector(c.P1, &mm)
		mm.Seed++
		p2 := buildSelector(c.P2, &mm)
		out <- playGame(&g, p1, p2)
	}
}

func buildSelector(spec string, mm *opt.Minimax) ai.Selector {
	sel, err := opt.ParsePlayer(spec, mm)
	if err != nil {
		log.Fatalf("player %q: %v", spec, err)
	}
	if sel == nil {
		log.Fatalf("selfplay players must be automated, got %q", spec)
	}
	return sel
}

func playGame(spec *gameSpec, p1, p2 ai.Selector) Result {
	g, moves, out, err := four.Replay(spec.c.gridConfig(), spec.opening, four.P1)
	if err != nil {
		log.Fatalf("replay opening: %v", err)
	}
	toMove := four.P1
	if len(moves)%2 == 1 {
		toMove = four.P2
	}
	cutoff := spec.c.Cutoff
	if cutoff <= 0 {
		cutoff = g.Rows() * g.Cols()
	}
	for !out.Over() && len(moves) < cutoff {
		sel := p1
		if toMove != spec.p1disc {
			sel = p2
		}
		ctx := context.Background()
		var cancel context.CancelFunc
		if spec.c.Limit != 0 {
			ctx, cancel = context.WithTimeout(ctx, spec.c.Limit)
		}
		col, err := sel.SelectColumn(ctx, g, toMove)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			log.Fatalf("select column: %v", err)
		}
		row, err := g.Place(col, toMove)
		if err != nil {
			log.Fatalf("selector picked column %d: %v", col, err)
		}
		mv := four.Move{Col: col, Row: row, Player: toMove}
		moves = append(moves, mv)
		out = four.Scan(g, mv)
		toMove = toMove.Other()
	}
	return Result{spec: *spec, Grid: g, Moves: moves, Out: out}
}
