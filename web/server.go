// Package web exposes the game engine over an HTTP JSON API, plus a
// websocket stream of snapshots for spectators.
package web

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/nelhage/fourline/ai"
	"github.com/nelhage/fourline/cache"
	"github.com/nelhage/fourline/four"
	"github.com/nelhage/fourline/game"
)

type Config struct {
	Store *game.Store

	// Minimax configures the selector given to sessions created with
	// an automated player. Depth defaults to game.DefaultSearchDepth.
	Minimax ai.MinimaxConfig

	// Recorder, when set, receives every transition of every game
	// served here, in addition to the watch hub and the cache.
	Recorder game.Recorder

	// Cache, when set, is written through on every transition and
	// consulted for state reads after a session has been swept.
	Cache *cache.Cache

	// AllowOrigin configures CORS. Empty disables the headers; "*"
	// answers any origin.
	AllowOrigin string

	Debug int
}

type Server struct {
	cfg Config
	hub *Hub
	mux *http.ServeMux
}

func NewServer(cfg Config) *Server {
	if cfg.Store == nil {
		cfg.Store = game.NewStore()
	}
	if cfg.Minimax.Depth == 0 {
		cfg.Minimax.Depth = game.DefaultSearchDepth
	}
	s := &Server{
		cfg: cfg,
		hub: NewHub(cfg.Debug),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/game/new", s.handleNewGame)
	mux.HandleFunc("GET /api/game/{id}/state", s.handleState)
	mux.HandleFunc("POST /api/game/{id}/move", s.handleMove)
	mux.HandleFunc("POST /api/game/{id}/ai-move", s.handleAIMove)
	mux.HandleFunc("POST /api/game/{id}/reset", s.handleReset)
	mux.HandleFunc("DELETE /api/game/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/game/{id}/watch", s.handleWatch)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux = mux
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AllowOrigin != "" {
		s.cors(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	// Clients generated against the old API send trailing slashes.
	if p := r.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		r2 := r.Clone(r.Context())
		r2.URL.Path = strings.TrimSuffix(p, "/")
		r = r2
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) cors(w http.ResponseWriter, r *http.Request) {
	allow := s.cfg.AllowOrigin
	if allow != "*" {
		origin := r.Header.Get("Origin")
		allow = ""
		for _, o := range strings.Split(s.cfg.AllowOrigin, ",") {
			if strings.TrimSpace(o) == origin {
				allow = origin
				break
			}
		}
		if allow == "" {
			return
		}
	}
	w.Header().Set("Access-Control-Allow-Origin", allow)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

type NewGameRequest struct {
	HasAI    bool `json:"has_ai"`
	AIPlayer int  `json:"ai_player"`
}

type MoveRequest struct {
	Column *int `json:"column"`
}

type ErrorResponse struct {
	Error string         `json:"error"`
	State *game.Snapshot `json:"state,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
	Games  int    `json:"games"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.AIPlayer == 0 {
		req.AIPlayer = 2
	}
	if req.AIPlayer != 1 && req.AIPlayer != 2 {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	sel, err := ai.NewMinimax(s.cfg.Minimax)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	sess := s.cfg.Store.Create(game.Config{
		WithAI:   req.HasAI,
		AIPlayer: four.Player(req.AIPlayer),
		Selector: sel,
		Recorder: s.recorder(),
		Debug:    s.cfg.Debug,
	})
	snap := sess.Snapshot()
	if s.cfg.Cache != nil {
		if err := s.cfg.Cache.Put(r.Context(), snap); err != nil {
			log.Printf("[web] cache new game %s: %v", snap.GameID, err)
		}
	}
	if s.cfg.Debug > 0 {
		log.Printf("[web] new game id=%s ai=%v ai_player=%d", snap.GameID, req.HasAI, req.AIPlayer)
	}
	writeJSON(w, http.StatusCreated, &snap)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, err := s.cfg.Store.Get(id)
	if err == nil {
		snap := sess.Snapshot()
		writeJSON(w, http.StatusOK, &snap)
		return
	}
	// Swept or restarted-away sessions may still be cached.
	if s.cfg.Cache != nil {
		if snap, err := s.cfg.Cache.Get(r.Context(), id); err == nil {
			writeJSON(w, http.StatusOK, &snap)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Game not found", nil)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sess, err := s.cfg.Store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Game not found", nil)
		return
	}
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Column == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	// The API speaks for whichever player is due to act.
	snap, err := sess.ApplyMove(sess.CurrentPlayer(), *req.Column)
	if err != nil {
		status, msg := errorStatus(err)
		state := sess.Snapshot()
		writeError(w, status, msg, &state)
		return
	}
	writeJSON(w, http.StatusOK, &snap)
}

func (s *Server) handleAIMove(w http.ResponseWriter, r *http.Request) {
	sess, err := s.cfg.Store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Game not found", nil)
		return
	}
	if !sess.Snapshot().HasAI {
		writeError(w, http.StatusBadRequest, "This game does not have an AI player", nil)
		return
	}
	snap, err := sess.RequestAutomatedMove(r.Context())
	if err != nil {
		status, msg := errorStatus(err)
		state := sess.Snapshot()
		writeError(w, status, msg, &state)
		return
	}
	writeJSON(w, http.StatusOK, &snap)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.cfg.Store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Game not found", nil)
		return
	}
	snap := sess.Reset()
	if s.cfg.Cache != nil {
		if err := s.cfg.Cache.Put(r.Context(), snap); err != nil {
			log.Printf("[web] cache reset %s: %v", snap.GameID, err)
		}
	}
	s.hub.Broadcast(snap)
	writeJSON(w, http.StatusOK, &snap)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.cfg.Store.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "Game not found", nil)
		return
	}
	if s.cfg.Cache != nil {
		if err := s.cfg.Cache.Delete(r.Context(), id); err != nil {
			log.Printf("[web] cache delete %s: %v", id, err)
		}
	}
	s.hub.CloseGame(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Games:  s.cfg.Store.Len(),
	})
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, err := s.cfg.Store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Game not found", nil)
		return
	}
	s.hub.Serve(w, r, id, sess.Snapshot())
}

// recorder composes the sinks every new session reports to: the watch
// hub always, plus the cache and the configured archive when present.
func (s *Server) recorder() game.Recorder {
	rec := game.MultiRecorder{s.hub}
	if s.cfg.Cache != nil {
		rec = append(rec, s.cfg.Cache)
	}
	if s.cfg.Recorder != nil {
		rec = append(rec, s.cfg.Recorder)
	}
	return rec
}

// errorStatus maps engine sentinels to the API's status codes and
// message strings. Anything unrecognized is an internal error.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, four.ErrInvalidColumn):
		return http.StatusBadRequest, "Invalid column"
	case errors.Is(err, four.ErrColumnFull):
		return http.StatusBadRequest, "Column is full"
	case errors.Is(err, game.ErrWrongTurn):
		return http.StatusBadRequest, "Not your turn"
	case errors.Is(err, game.ErrGameFinished):
		return http.StatusBadRequest, "Game is not in playing state"
	case errors.Is(err, game.ErrNotAutomatedTurn):
		return http.StatusBadRequest, "It is not the AI's turn"
	case errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound, "Game not found"
	}
	return http.StatusInternalServerError, "Internal error"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[web] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, state *game.Snapshot) {
	writeJSON(w, status, &ErrorResponse{Error: msg, State: state})
}
