package selfplay

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nelhage/fourline/cmd/internal/opt"
	"github.com/nelhage/fourline/logs"
)

type Command struct {
	p1 string
	p2 string

	rows int
	cols int

	games  int
	cutoff int
	swap   bool

	openings string

	limit   time.Duration
	threads int

	summary string
	record  string
	verbose bool

	mm opt.Minimax
}

func (*Command) Name() string     { return "selfplay" }
func (*Command) Synopsis() string { return "Play two AIs against each other and report results" }
func (*Command) Usage() string {
	return `selfplay [flags]
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.p1, "p1", "minimax", "player 1 spec: rand[:seed], minimax[:depth], mcts[:sims]")
	flags.StringVar(&c.p2, "p2", "minimax", "player 2 spec")
	flags.IntVar(&c.rows, "rows", 0, "grid rows")
	flags.IntVar(&c.cols, "cols", 0, "grid columns")

	flags.IntVar(&c.games, "games", 10, "number of games to play per opening/color")
	flags.IntVar(&c.cutoff, "cutoff", 0, "cut games off after how many plies (0 = play out)")
	flags.BoolVar(&c.swap, "swap", true, "swap which spec moves first each game")
	flags.StringVar(&c.openings, "openings", "", "file of openings in drop notation, 1/line")
	flags.DurationVar(&c.limit, "limit", 0, "amount of time to search each move")
	flags.IntVar(&c.threads, "threads", 4, "number of parallel threads")
	flags.StringVar(&c.summary, "summary", "", "write summary JSON file")
	flags.StringVar(&c.record, "record", "", "archive finished games to this database")
	flags.BoolVar(&c.verbose, "v", false, "verbose output")

	c.mm.AddFlags(flags)
}

func readOpenings(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	r := bufio.NewScanner(f)
	for r.Scan() {
		if line := strings.TrimSpace(r.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, r.Err()
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.mm.Seed == 0 {
		c.mm.Seed = time.Now().Unix()
	}

	var openings []string
	if c.openings != "" {
		var e error
		openings, e = readOpenings(c.openings)
		if e != nil {
			log.Fatalf("-openings: %v", e)
		}
	}

	cfg := &Config{
		Games:    c.games,
		Verbose:  c.verbose,
		Openings: openings,
		P1:       c.p1,
		P2:       c.p2,
		Rows:     c.rows,
		Cols:     c.cols,
		Swap:     c.swap,
		Threads:  c.threads,
		Cutoff:   c.cutoff,
		Limit:    c.limit,
		Opt:      c.mm,
	}

	st := Simulate(cfg)

	if c.record != "" {
		if err := c.archive(&st); err != nil {
			log.Printf("[selfplay] archive: %v", err)
		}
	}
	if c.summary != "" {
		if err := c.writeSummary(c.summary, &st); err != nil {
			log.Println("writing summary: ", err.Error())
		}
	}

	var plies int
	for i := range st.Games {
		plies += len(st.Games[i].Moves)
	}
	pr := message.NewPrinter(language.English)
	pr.Printf("done games=%d plies=%d seed=%d ties=%d cutoff=%d first=%d second=%d limit=%s\n",
		len(st.Games), plies, c.mm.Seed, st.Ties, st.Cutoff, st.First, st.Second, c.limit)
	pr.Printf("p1.wins=%d (%d first/%d second) p2.wins=%d (%d first/%d second)\n",
		st.Players[0].Wins, st.Players[0].FirstWins, st.Players[0].SecondWins,
		st.Players[1].Wins, st.Players[1].FirstWins, st.Players[1].SecondWins)

	tw := tabwriter.NewWriter(os.Stderr, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\tfirst\tsecond\tsum\n")
	fmt.Fprintf(tw, "p1\t%d\t%d\t%d\n", st.Players[0].FirstWins, st.Players[0].SecondWins, st.Players[0].Wins)
	fmt.Fprintf(tw, "p2\t%d\t%d\t%d\n", st.Players[1].FirstWins, st.Players[1].SecondWins, st.Players[1].Wins)
	fmt.Fprintf(tw, "sum\t%d\t%d\t%d\n",
		st.Players[0].FirstWins+st.Players[1].FirstWins,
		st.Players[0].SecondWins+st.Players[1].SecondWins,
		st.Players[0].Wins+st.Players[1].Wins,
	)
	tw.Flush()

	a, b := int64(st.Players[0].Wins), int64(st.Players[1].Wins)
	if a < b {
		a, b = b, a
	}
	log.Printf("p[one-sided]=%f", binomTest(a, b, 0.5))

	return subcommands.ExitSuccess
}

func (c *Command) archive(st *Stats) error {
	repo, err := opt.OpenRepository(c.record)
	if err != nil {
		return err
	}
	defer repo.Close()

	now := time.Now()
	var batch []logs.Archived
	for i := range st.Games {
		r := &st.Games[i]
		if !r.Out.Over() {
			continue
		}
		cfg := r.Grid.Config()
		id := fmt.Sprintf("selfplay_%d_%d_%d", c.mm.Seed, r.spec.oi, r.spec.i)
		g := &logs.Game{
			ID:      id,
			Started: now,
			Ended:   now,
			Rows:    cfg.Rows,
			Cols:    cfg.Cols,
			Result:  logs.ResultFor(r.Out.Winner),
			Winner:  int(r.Out.Winner),
			Moves:   len(r.Moves),
			Drops:   r.Drops(),
		}
		moves := make([]logs.Move, len(r.Moves))
		for j, mv := range r.Moves {
			moves[j] = logs.Move{
				Game:   id,
				Number: j + 1,
				Player: int(mv.Player),
				Col:    mv.Col,
				Row:    mv.Row,
			}
		}
		batch = append(batch, logs.Archived{Game: g, Moves: moves})
	}
	if err := repo.InsertGames(batch); err != nil {
		return err
	}
	log.Printf("[selfplay] archived %d games to %s", len(batch), c.record)
	return nil
}

type Summary struct {
	Cmdline []string
	Player1 string
	Player2 string
	Limit   time.Duration
	Stats   *Stats
}

func (c *Command) writeSummary(path string, stats *Stats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	summary := Summary{
		Cmdline: os.Args,
		Player1: c.p1,
		Player2: c.p2,
		Limit:   c.limit,
		Stats:   stats,
	}

	bs, err := json.MarshalIndent(&summary, "", "  ")
	if err != nil {
		return err
	}
	f.Write(bs)
	return nil
}
