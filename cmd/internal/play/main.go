package play

import (
	"bufio"
	"flag"
	"io/ioutil"
	"log"
	"os"
	"time"

	"context"

	"github.com/google/subcommands"

	"github.com/nelhage/fourline/cli"
	"github.com/nelhage/fourline/cmd/internal/opt"
	"github.com/nelhage/fourline/four"
	"github.com/nelhage/fourline/logs"
)

type Command struct {
	p1     string
	p2     string
	rows   int
	cols   int
	limit  time.Duration
	out    string
	record string

	unicode bool
	mm      opt.Minimax
}

func (*Command) Name() string     { return "play" }
func (*Command) Synopsis() string { return "Play four-in-a-row from the command line" }
func (*Command) Usage() string {
	return `play

Play four-in-a-row on the command line, against a human or AI.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.p1, "p1", "human", "player 1: human, rand[:seed], minimax[:depth], mcts[:sims]")
	flags.StringVar(&c.p2, "p2", "minimax", "player 2")
	flags.IntVar(&c.rows, "rows", 0, "grid rows")
	flags.IntVar(&c.cols, "cols", 0, "grid columns")
	flags.DurationVar(&c.limit, "limit", time.Minute, "ai time limit per move")
	flags.StringVar(&c.out, "out", "", "write the drops string to a file")
	flags.StringVar(&c.record, "record", "", "archive the game to this database")

	flags.BoolVar(&c.unicode, "unicode", false, "render the grid with utf8 glyphs")
	c.mm.AddFlags(flags)
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in := bufio.NewReader(os.Stdin)
	st := &cli.CLI{
		Config:  four.Config{Rows: c.rows, Cols: c.cols},
		Out:     os.Stdout,
		Player1: c.parsePlayer(in, c.p1),
		Player2: c.parsePlayer(in, c.p2),
		Glyphs:  glyphs(c.unicode),
	}
	started := time.Now()
	out := st.Play()
	if c.out != "" {
		ioutil.WriteFile(c.out, []byte(st.Drops()+"\n"), 0644)
	}
	if c.record != "" {
		if err := c.archive(st, out, started); err != nil {
			log.Printf("[play] archive: %v", err)
		}
	}
	return subcommands.ExitSuccess
}

func glyphs(unicode bool) *cli.Glyphs {
	if unicode {
		return &cli.UnicodeGlyphs
	}
	return &cli.DefaultGlyphs
}

func (c *Command) parsePlayer(in *bufio.Reader, s string) cli.Player {
	sel, err := opt.ParsePlayer(s, &c.mm)
	if err != nil {
		log.Fatal(err)
	}
	if sel == nil {
		return cli.NewCLIPlayer(os.Stdout, in)
	}
	return cli.NewAIPlayer(sel, c.limit)
}

func (c *Command) archive(st *cli.CLI, out four.Outcome, started time.Time) error {
	repo, err := opt.OpenRepository(c.record)
	if err != nil {
		return err
	}
	defer repo.Close()

	moves := st.Moves()
	cfg := st.Grid().Config()
	g := &logs.Game{
		ID:      "game_" + started.Format("20060102_150405"),
		Started: started,
		Ended:   time.Now(),
		Rows:    cfg.Rows,
		Cols:    cfg.Cols,
		Result:  logs.ResultFor(out.Winner),
		Winner:  int(out.Winner),
		Moves:   len(moves),
		Drops:   st.Drops(),
	}
	rows := make([]logs.Move, len(moves))
	for i, mv := range moves {
		rows[i] = logs.Move{
			Game:   g.ID,
			Number: i + 1,
			Player: int(mv.Player),
			Col:    mv.Col,
			Row:    mv.Row,
		}
	}
	if err := repo.InsertGame(g, rows); err != nil {
		return err
	}
	log.Printf("[play] archived %s (%s)", g.ID, g.Result)
	return nil
}
