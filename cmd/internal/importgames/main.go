package importgames

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/subcommands"

	"github.com/nelhage/fourline/cmd/internal/opt"
	"github.com/nelhage/fourline/four"
	"github.com/nelhage/fourline/logs"
)

type Command struct {
	db    string
	dry   bool
	batch int
}

func (*Command) Name() string     { return "importgames" }
func (*Command) Synopsis() string { return "Import recorded games into the archive" }
func (*Command) Usage() string {
	return `importgames -db games.db FILE.json [FILE.json|DIR ...]

Import game records into the archive database. Each input file holds
one record per JSON object (a whole directory of game_data files works
too); every record is replayed through the engine and rejected if a
move is illegal or the recorded result disagrees with the replay.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.db, "db", "", "database to import into")
	flags.BoolVar(&c.dry, "dry", false, "validate records without writing")
	flags.IntVar(&c.batch, "batch", 100, "games per insert batch")
}

const ReportInterval = 1000

type moveRecord struct {
	MoveNumber int `json:"move_number"`
	Player     int `json:"player"`
	Column     int `json:"column"`
}

type gameRecord struct {
	GameID    string       `json:"game_id"`
	StartTime string       `json:"start_time"`
	EndTime   string       `json:"end_time"`
	Moves     []moveRecord `json:"moves"`
	Result    string       `json:"result"`
	Winner    int          `json:"winner"`
}

var errUnfinished = errors.New("game not finished")

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if len(flag.Args()) == 0 {
		log.Println("Must supply game record files")
		return subcommands.ExitUsageError
	}
	if c.db == "" && !c.dry {
		log.Println("Must supply -db (or -dry)")
		return subcommands.ExitUsageError
	}

	var repo *logs.Repository
	if !c.dry {
		var err error
		repo, err = opt.OpenRepository(c.db)
		if err != nil {
			log.Fatalf("open %q: %v", c.db, err)
		}
		defer repo.Close()
	}

	files, err := expand(flag.Args())
	if err != nil {
		log.Fatal(err)
	}

	var batch []logs.Archived
	var imported, skipped int
	flush := func() {
		if c.dry || len(batch) == 0 {
			return
		}
		if err := repo.InsertGames(batch); err != nil {
			log.Fatalf("insert: %v", err)
		}
		batch = batch[:0]
	}
	for _, path := range files {
		if err := readRecords(path, func(rec *gameRecord) {
			a, err := importOne(rec)
			if err != nil {
				skipped++
				log.Printf("could not import: id=%q err=%v", rec.GameID, err)
				return
			}
			batch = append(batch, *a)
			imported++
			if imported%ReportInterval == 0 {
				log.Printf("%d...", imported)
			}
			if len(batch) >= c.batch {
				flush()
			}
		}); err != nil {
			log.Fatalf("%s: %v", path, err)
		}
	}
	flush()

	log.Printf("imported %d games, skipped %d", imported, skipped)
	return subcommands.ExitSuccess
}

// expand flattens directory arguments into their .json entries.
func expand(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		st, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, a)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(a, "*.json"))
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}

// readRecords streams every JSON object in path through fn. The decoder
// handles both one pretty-printed record per file and one record per
// line.
func readRecords(path string, fn func(*gameRecord)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	for {
		var rec gameRecord
		if err := dec.Decode(&rec); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		fn(&rec)
	}
}

// importOne replays a record through the engine and converts it into
// archive rows. The landed rows come from the replay, not the record.
func importOne(rec *gameRecord) (*logs.Archived, error) {
	if rec.Result == "" {
		return nil, errUnfinished
	}
	if rec.GameID == "" {
		return nil, errors.New("no game_id")
	}

	cfg := four.Config{}
	cols := make([]int, len(rec.Moves))
	for i, mv := range rec.Moves {
		if mv.MoveNumber != i+1 {
			return nil, fmt.Errorf("move %d numbered %d", i+1, mv.MoveNumber)
		}
		want := 1 + i%2
		if mv.Player != want {
			return nil, fmt.Errorf("move %d by player %d, want %d", i+1, mv.Player, want)
		}
		cols[i] = mv.Column
	}

	g, moves, out, err := four.Replay(cfg, cols, four.P1)
	if err != nil {
		return nil, err
	}
	if !out.Over() {
		return nil, errUnfinished
	}
	if got := logs.ResultFor(out.Winner); got != rec.Result {
		return nil, fmt.Errorf("recorded result %q, replay says %q", rec.Result, got)
	}
	if rec.Winner != int(out.Winner) {
		return nil, fmt.Errorf("recorded winner %d, replay says %d", rec.Winner, out.Winner)
	}

	drops, err := four.FormatDrops(g.Config(), cols)
	if err != nil {
		return nil, err
	}
	game := &logs.Game{
		ID:      rec.GameID,
		Started: parseTime(rec.StartTime),
		Ended:   parseTime(rec.EndTime),
		Rows:    g.Rows(),
		Cols:    g.Cols(),
		Result:  rec.Result,
		Winner:  int(out.Winner),
		Moves:   len(moves),
		Drops:   drops,
	}
	rows := make([]logs.Move, len(moves))
	for i, mv := range moves {
		rows[i] = logs.Move{
			Game:   rec.GameID,
			Number: i + 1,
			Player: int(mv.Player),
			Col:    mv.Col,
			Row:    mv.Row,
		}
	}
	return &logs.Archived{Game: game, Moves: rows}, nil
}

// parseTime accepts the recorder's isoformat timestamps, with or
// without a zone suffix. Unparseable times import as zero.
func parseTime(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
