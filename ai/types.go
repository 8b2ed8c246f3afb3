package ai

import (
	"errors"

	"golang.org/x/net/context"

	"github.com/nelhage/fourline/four"
)

// A Selector picks a column for player p to drop into. Implementations
// must not mutate g, must be reproducible for a fixed seed, and must
// return ErrNoLegalMove when the grid is full.
type Selector interface {
	SelectColumn(ctx context.Context, g *four.Grid, p four.Player) (int, error)
}

var ErrNoLegalMove = errors.New("no legal move")
