package ai

import (
	"math/rand"

	"golang.org/x/net/context"

	"github.com/nelhage/fourline/four"
)

type RandomAI struct {
	r *rand.Rand
}

func NewRandom(seed int64) *RandomAI {
	return &RandomAI{
		r: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomAI) SelectColumn(ctx context.Context, g *four.Grid, p four.Player) (int, error) {
	var free []int
	for col := 0; col < g.Cols(); col++ {
		if g.ColumnFree(col) {
			free = append(free, col)
		}
	}
	if len(free) == 0 {
		return 0, ErrNoLegalMove
	}
	return free[r.r.Intn(len(free))], nil
}
