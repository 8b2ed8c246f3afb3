package watch

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/gorilla/websocket"

	"github.com/nelhage/fourline/cli"
	"github.com/nelhage/fourline/four"
	"github.com/nelhage/fourline/game"
)

type Command struct {
	server  string
	id      string
	unicode bool
	follow  bool
}

func (*Command) Name() string     { return "watch" }
func (*Command) Synopsis() string { return "Watch a live game on a fourline server" }
func (*Command) Usage() string {
	return `watch -id game_xxx [-server http://localhost:8080]

Subscribe to a game's spectator feed and render every update. Exits
when the game ends unless -follow is set.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.server, "server", "http://localhost:8080", "fourline server to connect to")
	flags.StringVar(&c.id, "id", "", "game id to watch")
	flags.BoolVar(&c.unicode, "unicode", false, "render with unicode discs")
	flags.BoolVar(&c.follow, "follow", false, "keep watching after the game ends")
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		log.Println("Must supply -id")
		return subcommands.ExitUsageError
	}
	target, err := feedURL(c.server, c.id)
	if err != nil {
		log.Fatal("bad -server: ", err)
	}

	backoff := 1 * time.Second
	for {
		connected, done, err := c.watch(target)
		if done {
			return subcommands.ExitSuccess
		}
		if err != nil {
			log.Printf("watch: %v", err)
		}
		if connected {
			backoff = time.Second
		}
		log.Printf("sleeping %s before reconnect...", backoff)
		time.Sleep(backoff)
		backoff = backoff * 2
		if backoff > time.Minute {
			backoff = time.Minute
		}
	}
}

// feedURL turns a server base URL into the game's websocket endpoint.
func feedURL(server, id string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/api/game/" + id + "/watch"
	return u.String(), nil
}

func (c *Command) watch(target string) (connected, done bool, err error) {
	conn, resp, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		if err == websocket.ErrBadHandshake && resp != nil && resp.StatusCode == http.StatusNotFound {
			log.Fatalf("game %q not found", c.id)
		}
		return false, false, err
	}
	defer conn.Close()
	for {
		var snap game.Snapshot
		if err := conn.ReadJSON(&snap); err != nil {
			return true, false, err
		}
		c.render(&snap)
		if snap.Over() && !c.follow {
			return true, true, nil
		}
	}
}

func (c *Command) render(snap *game.Snapshot) {
	gl := &cli.DefaultGlyphs
	if c.unicode {
		gl = &cli.UnicodeGlyphs
	}
	cli.RenderGrid(gl, os.Stdout, gridFromBoard(snap.Board), four.Player(snap.CurrentPlayer))
	switch {
	case snap.Status == four.Won.String() && snap.Winner != nil:
		fmt.Printf("%s wins: %s\n", four.Player(*snap.Winner), cli.FormatCells(snap.WinningPositions))
	case snap.Status == four.Draw.String():
		fmt.Println("Draw.")
	}
	fmt.Println()
}

// gridFromBoard rebuilds a grid from a snapshot board, bottom row up so
// every disc lands on the cell the snapshot shows it in.
func gridFromBoard(board [][]int) *four.Grid {
	rows := len(board)
	var cols int
	if rows > 0 {
		cols = len(board[0])
	}
	g := four.New(four.Config{Rows: rows, Cols: cols})
	for col := 0; col < cols; col++ {
		for r := rows - 1; r >= 0; r-- {
			cell := four.Player(board[r][col])
			if cell == four.Empty {
				break
			}
			g.Place(col, cell)
		}
	}
	return g
}
