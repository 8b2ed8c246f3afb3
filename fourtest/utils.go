// Package fourtest builds grids and move lists from the compact drop
// notation for use in tests. Helpers panic on illegal input: a bad
// fixture is a bug in the test, not a condition to handle.
package fourtest

import (
	"github.com/nelhage/fourline/four"
)

func parse(drops string) []int {
	cols, err := four.ParseDrops(four.Config{}, drops)
	if err != nil {
		panic(err)
	}
	return cols
}

// Grid replays drops onto a default 6x7 grid, player 1 first.
func Grid(drops string) *four.Grid {
	g, _, _, err := four.Replay(four.Config{}, parse(drops), four.P1)
	if err != nil {
		panic(err)
	}
	return g
}

// Moves returns the move list of a replayed drop sequence.
func Moves(drops string) []four.Move {
	_, ms, _, err := four.Replay(four.Config{}, parse(drops), four.P1)
	if err != nil {
		panic(err)
	}
	return ms
}

// Outcome returns the outcome after the final drop of the sequence.
func Outcome(drops string) four.Outcome {
	_, _, out, err := four.Replay(four.Config{}, parse(drops), four.P1)
	if err != nil {
		panic(err)
	}
	return out
}

// ToMove returns the player whose turn follows the sequence, player 1
// moving first.
func ToMove(drops string) four.Player {
	if len(drops)%2 == 0 {
		return four.P1
	}
	return four.P2
}
