package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sync"
	"time"
)

var ErrSessionNotFound = errors.New("game not found")

// Store owns the live sessions, keyed by game id. Sessions lock
// themselves; the store only guards the map.
type Store struct {
	mu    sync.RWMutex
	games map[string]*Session

	Debug int
}

func NewStore() *Store {
	return &Store{games: make(map[string]*Session)}
}

// Create builds a session from cfg and registers it. A fresh game id
// is assigned when cfg.GameID is empty.
func (st *Store) Create(cfg Config) *Session {
	if cfg.GameID == "" {
		cfg.GameID = newGameID()
	}
	s := NewSession(cfg)
	st.mu.Lock()
	st.games[cfg.GameID] = s
	st.mu.Unlock()
	if st.Debug > 0 {
		log.Printf("[store] create id=%s ai=%v", cfg.GameID, cfg.WithAI)
	}
	return s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.games[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.games[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.games, id)
	return nil
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.games)
}

// Sweep drops sessions idle for longer than maxIdle and reports how
// many were dropped.
func (st *Store) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	st.mu.Lock()
	var stale []string
	for id, s := range st.games {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		delete(st.games, id)
	}
	st.mu.Unlock()
	if len(stale) > 0 && st.Debug > 0 {
		log.Printf("[store] swept %d idle sessions", len(stale))
	}
	return len(stale)
}

// Run sweeps on a ticker until ctx is cancelled.
func (st *Store) Run(ctx context.Context, interval, maxIdle time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			st.Sweep(maxIdle)
		}
	}
}

func newGameID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("store: reading random bytes: " + err.Error())
	}
	return "game_" + hex.EncodeToString(b[:])
}
