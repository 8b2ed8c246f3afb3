package game

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/nelhage/fourline/ai"
	"github.com/nelhage/fourline/four"
)

var (
	ErrWrongTurn        = errors.New("not your turn")
	ErrGameFinished     = errors.New("game is not in playing state")
	ErrNotAutomatedTurn = errors.New("it is not the automated player's turn")
)

// DefaultSearchDepth is used when a session wants an automated player
// but no selector was configured.
const DefaultSearchDepth = 4

type Config struct {
	GameID string
	Rows   int
	Cols   int

	// StartingPlayer opens the game and is restored by Reset.
	// Defaults to player 1.
	StartingPlayer four.Player

	WithAI   bool
	AIPlayer four.Player
	Selector ai.Selector

	Recorder Recorder
	Debug    int
}

// Session drives one game. All operations serialize on an internal
// mutex: a move is validated, applied, classified, and recorded as one
// step. The grid never escapes; callers get value snapshots.
type Session struct {
	cfg Config

	mu         sync.Mutex
	grid       *four.Grid
	current    four.Player
	out        four.Outcome
	history    []four.Move
	version    uint64
	lastActive time.Time
}

func NewSession(cfg Config) *Session {
	if cfg.StartingPlayer == four.Empty {
		cfg.StartingPlayer = four.P1
	}
	if cfg.AIPlayer == four.Empty {
		cfg.AIPlayer = four.P2
	}
	if cfg.WithAI && cfg.Selector == nil {
		sel, err := ai.NewMinimax(ai.MinimaxConfig{Depth: DefaultSearchDepth})
		if err != nil {
			panic("session: default selector: " + err.Error())
		}
		cfg.Selector = sel
	}
	return &Session{
		cfg:        cfg,
		grid:       four.New(four.Config{Rows: cfg.Rows, Cols: cfg.Cols}),
		current:    cfg.StartingPlayer,
		lastActive: time.Now(),
	}
}

func (s *Session) GameID() string { return s.cfg.GameID }

// ApplyMove drops a disc for p into col and advances the state
// machine. On success the returned snapshot reflects the new state;
// errors leave the session untouched.
func (s *Session) ApplyMove(p four.Player, col int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	return s.applyLocked(p, col)
}

func (s *Session) applyLocked(p four.Player, col int) (Snapshot, error) {
	if p != s.current {
		return Snapshot{}, ErrWrongTurn
	}
	if s.out.Status != four.Playing {
		return Snapshot{}, ErrGameFinished
	}
	row, err := s.grid.Place(col, p)
	if err != nil {
		return Snapshot{}, err
	}
	s.version++
	s.history = append(s.history, four.Move{Col: col, Row: row, Player: p})
	mv := Move{
		Move:   s.history[len(s.history)-1],
		Number: len(s.history),
	}
	out := four.Scan(s.grid, mv.Move)
	switch out.Status {
	case four.Won, four.Draw:
		// current stays on the last mover.
		s.out = out
	default:
		s.current = p.Other()
	}
	if s.cfg.Debug > 0 {
		log.Printf("[session] %s: move=%d player=%s col=%d row=%d status=%s",
			s.cfg.GameID, mv.Number, p, col, row, s.out.Status)
	}
	snap := s.snapshotLocked()
	if s.cfg.Recorder != nil {
		s.cfg.Recorder.RecordMove(snap, mv)
	}
	return snap, nil
}

// RequestAutomatedMove computes a column with the configured selector
// and applies it. The search runs on a clone outside the session lock;
// if any operation commits in the meantime the result is discarded and
// the search restarted, so a stale column is never applied.
func (s *Session) RequestAutomatedMove(ctx context.Context) (Snapshot, error) {
	for {
		s.mu.Lock()
		s.lastActive = time.Now()
		if !s.cfg.WithAI || s.current != s.cfg.AIPlayer {
			s.mu.Unlock()
			return Snapshot{}, ErrNotAutomatedTurn
		}
		if s.out.Status != four.Playing {
			s.mu.Unlock()
			return Snapshot{}, ErrGameFinished
		}
		version := s.version
		g := s.grid.Clone()
		p := s.current
		s.mu.Unlock()

		col, err := s.cfg.Selector.SelectColumn(ctx, g, p)
		if err != nil {
			return Snapshot{}, err
		}

		s.mu.Lock()
		if s.version != version {
			s.mu.Unlock()
			if s.cfg.Debug > 0 {
				log.Printf("[session] %s: discarding stale automated col=%d", s.cfg.GameID, col)
			}
			continue
		}
		snap, err := s.applyLocked(p, col)
		s.mu.Unlock()
		return snap, err
	}
}

// Reset clears the grid and returns to the starting player. The game
// id and the automated-player configuration survive.
func (s *Session) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	s.grid.Reset()
	s.current = s.cfg.StartingPlayer
	s.out = four.Outcome{}
	s.history = s.history[:0]
	s.version++
	return s.snapshotLocked()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// CurrentPlayer reports whose turn it is; after a win it stays on the
// winner.
func (s *Session) CurrentPlayer() four.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Moves returns a copy of the game's move history.
func (s *Session) Moves() []four.Move {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]four.Move(nil), s.history...)
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		GameID:           s.cfg.GameID,
		Board:            s.grid.Board(),
		CurrentPlayer:    int(s.current),
		Status:           s.out.Status.String(),
		WinningPositions: []four.Cell{},
		HasAI:            s.cfg.WithAI,
		AIPlayer:         int(s.cfg.AIPlayer),
	}
	if s.out.Status == four.Won {
		w := int(s.out.Winner)
		snap.Winner = &w
		snap.WinningPositions = append(snap.WinningPositions, s.out.Cells...)
	}
	return snap
}
