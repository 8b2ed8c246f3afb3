package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nelhage/fourline/ai"
	"github.com/nelhage/fourline/four"
)

func NewCLIPlayer(out io.Writer, in *bufio.Reader) Player {
	return &cliPlayer{out, in}
}

type cliPlayer struct {
	out io.Writer
	in  *bufio.Reader
}

func (c *cliPlayer) GetColumn(g *four.Grid, p four.Player) int {
	for {
		fmt.Fprintf(c.out, "%s> ", p)
		line, err := c.in.ReadString('\n')
		if err != nil {
			panic(err)
		}
		col, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(c.out, "parse error: ", err)
			continue
		}
		return col
	}
}

// NewAIPlayer drives a selector with a per-move time limit. A limit of
// zero searches without a deadline.
func NewAIPlayer(sel ai.Selector, limit time.Duration) Player {
	return &aiPlayer{sel, limit}
}

type aiPlayer struct {
	sel   ai.Selector
	limit time.Duration
}

func (a *aiPlayer) GetColumn(g *four.Grid, p four.Player) int {
	ctx := context.Background()
	if a.limit != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, time.Now().Add(a.limit))
		defer cancel()
	}
	col, err := a.sel.SelectColumn(ctx, g, p)
	if err != nil {
		panic(fmt.Sprintf("select column: %v", err))
	}
	return col
}
