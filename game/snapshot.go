package game

import (
	"github.com/nelhage/fourline/four"
)

// Snapshot is the full session state handed to transports, recorders,
// and renderers. It is a value copy; holders never see later moves.
type Snapshot struct {
	GameID           string      `json:"game_id"`
	Board            [][]int     `json:"board"`
	CurrentPlayer    int         `json:"current_player"`
	Status           string      `json:"status"`
	Winner           *int        `json:"winner"`
	WinningPositions []four.Cell `json:"winning_positions"`
	HasAI            bool        `json:"has_ai"`
	AIPlayer         int         `json:"ai_player"`
}

// Over reports whether the snapshot describes a finished game.
func (s *Snapshot) Over() bool {
	return s.Status != four.Playing.String()
}
