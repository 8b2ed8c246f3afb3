package logs

import (
	"log"
	"sync"
	"time"

	"github.com/nelhage/fourline/four"
	"github.com/nelhage/fourline/game"
)

// Recorder buffers the moves of live games and archives each game when
// it reaches a terminal state. Games abandoned mid-play are never
// written, matching the write-only sink contract: the engine takes no
// read dependency on the archive.
type Recorder struct {
	repo *Repository

	Debug int

	mu   sync.Mutex
	open map[string]*pendingGame
}

type pendingGame struct {
	started time.Time
	moves   []game.Move
}

func NewRecorder(repo *Repository) *Recorder {
	return &Recorder{
		repo: repo,
		open: make(map[string]*pendingGame),
	}
}

func (r *Recorder) RecordMove(snap game.Snapshot, mv game.Move) {
	r.mu.Lock()
	p := r.open[snap.GameID]
	if p == nil || mv.Number == 1 {
		p = &pendingGame{started: time.Now()}
		r.open[snap.GameID] = p
	}
	p.moves = append(p.moves, mv)
	if !snap.Over() {
		r.mu.Unlock()
		return
	}
	delete(r.open, snap.GameID)
	r.mu.Unlock()

	if err := r.flush(snap, p); err != nil {
		log.Printf("[logs] archive %s: %v", snap.GameID, err)
	} else if r.Debug > 0 {
		log.Printf("[logs] archived %s: %s in %d moves",
			snap.GameID, snap.Status, len(p.moves))
	}
}

func (r *Recorder) flush(snap game.Snapshot, p *pendingGame) error {
	rows, cols := len(snap.Board), 0
	if rows > 0 {
		cols = len(snap.Board[0])
	}
	cfg := four.Config{Rows: rows, Cols: cols}
	seq := make([]int, len(p.moves))
	moves := make([]Move, len(p.moves))
	for i, mv := range p.moves {
		seq[i] = mv.Col
		moves[i] = Move{
			Game:   snap.GameID,
			Number: mv.Number,
			Player: int(mv.Player),
			Col:    mv.Col,
			Row:    mv.Row,
		}
	}
	drops, err := four.FormatDrops(cfg, seq)
	if err != nil {
		return err
	}
	var winner four.Player
	if snap.Winner != nil {
		winner = four.Player(*snap.Winner)
	}
	return r.repo.InsertGame(&Game{
		ID:      snap.GameID,
		Started: p.started,
		Ended:   time.Now(),
		Rows:    rows,
		Cols:    cols,
		Result:  ResultFor(winner),
		Winner:  int(winner),
		Moves:   len(p.moves),
		Drops:   drops,
	}, moves)
}
