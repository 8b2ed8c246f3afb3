package corpus

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"github.com/nelhage/fourline/ai"
	"github.com/nelhage/fourline/four"
)

type Command struct {
	seed int64
	rows int
	cols int

	games int

	epsilon float64
	depth   int
	threads int

	scoreDepth int
	limit      time.Duration

	stats  bool
	output string
}

func (*Command) Name() string     { return "corpus" }
func (*Command) Synopsis() string { return "Generate a corpus of scored positions" }
func (*Command) Usage() string {
	return `corpus [flags]
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.IntVar(&c.rows, "rows", 0, "grid rows")
	flags.IntVar(&c.cols, "cols", 0, "grid columns")
	flags.IntVar(&c.games, "games", 100, "games to generate")
	flags.Int64Var(&c.seed, "seed", 0, "Random seed")
	flags.IntVar(&c.threads, "threads", runtime.NumCPU(), "Number of threads")

	flags.IntVar(&c.scoreDepth, "score-depth", 8, "minimax depth when scoring sampled positions")
	flags.DurationVar(&c.limit, "limit", 5*time.Second, "minimax time limit when scoring")

	flags.BoolVar(&c.stats, "stats", false, "compute and print stats")
	flags.IntVar(&c.depth, "depth", 2, "minimax depth during generation")
	flags.Float64Var(&c.epsilon, "epsilon", 0.95, "epsilon for epsilon-greedy generation")

	flags.StringVar(&c.output, "output", "positions.txt", "output file")
}

func growslice[T any](sl []T, newlen int) []T {
	if len(sl) >= newlen {
		return sl
	}
	newsl := make([]T, newlen)
	copy(newsl, sl)
	return newsl
}

type entry struct {
	drops []int
	mover four.Player
	col   int
	value float64
}

// boardKey folds the grid contents into a dedupe key. The disc count
// fixes the player to move, so the board alone identifies a position.
func boardKey(g *four.Grid) string {
	var sb strings.Builder
	sb.Grow(g.Rows() * g.Cols())
	for r := 0; r < g.Rows(); r++ {
		for col := 0; col < g.Cols(); col++ {
			sb.WriteByte('0' + byte(g.At(r, col)))
		}
	}
	return sb.String()
}

// canonicalKey identifies a position with its mirror image. The grid is
// left-right symmetric, so both reflections carry the same value and
// only one belongs in the corpus.
func canonicalKey(g *four.Grid) string {
	k := boardKey(g)
	if m := mirrorKey(k, g.Cols()); m < k {
		return m
	}
	return k
}

func mirrorKey(k string, cols int) string {
	b := []byte(k)
	for off := 0; off+cols <= len(b); off += cols {
		row := b[off : off+cols]
		for i, j := 0, cols-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
	return string(b)
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := four.Config{Rows: c.rows, Cols: c.cols}

	games := make(chan []int)
	go c.generateGames(ctx, cfg, games)

	var gameList [][]int
	for g := range games {
		gameList = append(gameList, g)
	}
	if c.stats {
		c.printStats(cfg, gameList)
	}

	rng := rand.New(rand.NewSource(c.seed))

	// Sample one position per game, weighted toward the midgame;
	// openings repeat across games and endgames are mostly forced.
	positions := make(map[string][]int)
	for _, drops := range gameList {
		var idx int
		r := rng.Float64()
		if r < 0.1 {
			idx = int(rng.Int31n(6))
		} else if r < 0.5 {
			idx = 6 + int(rng.Int31n(8))
		} else {
			if len(drops) <= 14 {
				continue
			}
			idx = 14 + int(rng.Int31n(int32(len(drops))-14))
		}
		if idx >= len(drops) {
			continue
		}
		prefix := drops[:idx]
		g, _, _, err := four.Replay(cfg, prefix, four.P1)
		if err != nil {
			log.Fatalf("replay %v: %v", prefix, err)
		}
		positions[canonicalKey(g)] = prefix
	}

	results := make(chan entry)
	go c.evaluate(cfg, positions, results)

	fh, err := os.Create(c.output)
	if err != nil {
		log.Printf("open %q: %s", c.output, err.Error())
		return subcommands.ExitFailure
	}
	defer fh.Close()
	wr := csv.NewWriter(fh)
	defer wr.Flush()

	var n int
	for e := range results {
		drops, err := four.FormatDrops(cfg, e.drops)
		if err != nil {
			log.Fatalf("format drops: %v", err)
		}
		wr.Write([]string{
			drops,
			strconv.Itoa(int(e.mover)),
			strconv.Itoa(e.col),
			fmt.Sprintf("%+f", e.value),
		})
		n++
	}
	log.Printf("[corpus] wrote %d positions to %s", n, c.output)

	return subcommands.ExitSuccess
}

func (c *Command) printStats(cfg four.Config, gameList [][]int) {
	var byLength []int
	var posCount []map[string]int
	for _, drops := range gameList {
		byLength = growslice(byLength, len(drops))
		byLength[len(drops)-1]++
		posCount = growslice(posCount, len(drops)+1)
		g := four.New(cfg)
		toMove := four.P1
		for i, col := range drops {
			if posCount[i] == nil {
				posCount[i] = make(map[string]int)
			}
			posCount[i][boardKey(g)]++
			if _, err := g.Place(col, toMove); err != nil {
				log.Fatalf("replay: %v", err)
			}
			toMove = toMove.Other()
		}
		if posCount[len(drops)] == nil {
			posCount[len(drops)] = make(map[string]int)
		}
		posCount[len(drops)][boardKey(g)]++
	}
	for i := range byLength {
		log.Printf("ply=%3d games=%3d uniq=%4d", i, byLength[i], len(posCount[i]))
	}
}

func (c *Command) evaluate(cfg four.Config, positions map[string][]int, results chan<- entry) {
	defer close(results)
	input := make(chan []int)
	grp := errgroup.Group{}
	grp.Go(func() error {
		defer close(input)
		for _, drops := range positions {
			input <- drops
		}
		return nil
	})
	for i := 0; i < c.threads; i++ {
		grp.Go(func() error {
			mm, err := ai.NewMinimax(ai.MinimaxConfig{
				Depth: c.scoreDepth,
				Seed:  c.seed,
			})
			if err != nil {
				return err
			}
			for drops := range input {
				g, _, _, err := four.Replay(cfg, drops, four.P1)
				if err != nil {
					return err
				}
				mover := four.P1
				if len(drops)%2 == 1 {
					mover = four.P2
				}
				ctx, cancel := context.WithTimeout(context.Background(), c.limit)
				pv, val, _ := mm.Analyze(ctx, g, mover)
				cancel()
				ent := entry{drops: drops, mover: mover, col: pv[0]}
				switch {
				case val > ai.WinThreshold:
					ent.value = 1.0
				case val < -ai.WinThreshold:
					ent.value = -1.0
				case val > 0:
					ent.value = 0.5
				case val < 0:
					ent.value = -0.5
				}
				results <- ent
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		log.Fatalf("[corpus] score: %v", err)
	}
}

func (c *Command) generateGames(ctx context.Context, cfg four.Config, games chan<- []int) {
	defer close(games)
	todo := int64(c.games)

	grp, ctx := errgroup.WithContext(ctx)
	for i := 0; i < c.threads; i++ {
		id := i
		grp.Go(func() error {
			return c.generateWorker(ctx, cfg, games, &todo, id)
		})
	}
	if err := grp.Wait(); err != nil {
		log.Fatalf("[corpus] generate: %v", err)
	}
}

const prime = 1099511628211

func (c *Command) generateWorker(ctx context.Context, cfg four.Config, games chan<- []int, todo *int64, id int) error {
	rng := rand.New(rand.NewSource(prime*c.seed + int64(id)))
	mm, err := ai.NewMinimax(ai.MinimaxConfig{
		Seed:  rng.Int63(),
		Depth: c.depth,
	})
	if err != nil {
		return err
	}
	rnd := ai.NewRandom(rng.Int63())
	for {
		if atomic.AddInt64(todo, -1) < 0 {
			return nil
		}
		g := four.New(cfg)
		toMove := four.P1
		var out four.Outcome
		var drops []int
		for !out.Over() {
			var sel ai.Selector
			if rng.Float64() < c.epsilon {
				sel = rnd
			} else {
				sel = mm
			}
			col, err := sel.SelectColumn(ctx, g, toMove)
			if err != nil {
				return fmt.Errorf("select column: %w", err)
			}
			row, err := g.Place(col, toMove)
			if err != nil {
				return fmt.Errorf("place %d: %w", col, err)
			}
			out = four.Scan(g, four.Move{Col: col, Row: row, Player: toMove})
			drops = append(drops, col)
			toMove = toMove.Other()
		}
		games <- drops
	}
}
