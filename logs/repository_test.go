package logs

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nelhage/fourline/four"
	"github.com/nelhage/fourline/game"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open("sqlite3", filepath.Join(t.TempDir(), "games.db"))
	if err != nil {
		t.Fatal("open:", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := testRepo(t)
	in := &Game{
		ID:      "game_1",
		Started: time.Now().Add(-time.Minute),
		Ended:   time.Now(),
		Rows:    6,
		Cols:    7,
		Result:  ResultPlayer1,
		Winner:  1,
		Moves:   7,
		Drops:   "0011223",
	}
	moves := []Move{
		{Game: "game_1", Number: 1, Player: 1, Col: 0, Row: 5},
		{Game: "game_1", Number: 2, Player: 2, Col: 0, Row: 4},
	}
	if err := repo.InsertGame(in, moves); err != nil {
		t.Fatal("insert:", err)
	}

	out, err := repo.Game("game_1")
	if err != nil {
		t.Fatal("load:", err)
	}
	if out.Result != ResultPlayer1 || out.Winner != 1 || out.Moves != 7 || out.Drops != "0011223" {
		t.Fatalf("loaded %+v", out)
	}
	if out.Rows != 6 || out.Cols != 7 {
		t.Fatalf("loaded grid %dx%d", out.Rows, out.Cols)
	}
	if out.Started.IsZero() || out.Ended.IsZero() {
		t.Fatal("timestamps did not survive")
	}

	got, err := repo.Moves("game_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Number != 1 || got[1].Row != 4 {
		t.Fatalf("moves %+v", got)
	}

	if _, err := repo.Game("game_missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("got err=%v, want ErrNoRows", err)
	}
}

func TestRepositoryReplacesSameID(t *testing.T) {
	repo := testRepo(t)
	first := &Game{ID: "g", Result: ResultDraw, Rows: 6, Cols: 7, Moves: 42, Drops: "012"}
	if err := repo.InsertGame(first, []Move{{Game: "g", Number: 1, Player: 1, Col: 0, Row: 5}}); err != nil {
		t.Fatal(err)
	}
	second := &Game{ID: "g", Result: ResultPlayer2, Winner: 2, Rows: 6, Cols: 7, Moves: 8, Drops: "01020354"}
	if err := repo.InsertGame(second, nil); err != nil {
		t.Fatal(err)
	}

	out, err := repo.Game("g")
	if err != nil {
		t.Fatal(err)
	}
	if out.Result != ResultPlayer2 || out.Drops != "01020354" {
		t.Fatalf("loaded %+v, want the replacement", out)
	}
	games, err := repo.Games(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 1 {
		t.Fatalf("%d archived games under one id", len(games))
	}
	moves, err := repo.Moves("g")
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 0 {
		t.Fatalf("stale moves survived: %+v", moves)
	}
}

func TestRepositoryGamesOrder(t *testing.T) {
	repo := testRepo(t)
	base := time.Now()
	for i, id := range []string{"g1", "g2", "g3"} {
		g := &Game{
			ID:     id,
			Ended:  base.Add(time.Duration(i) * time.Minute),
			Rows:   6,
			Cols:   7,
			Result: ResultDraw,
			Drops:  "0",
			Moves:  1,
		}
		if err := repo.InsertGame(g, nil); err != nil {
			t.Fatal(err)
		}
	}
	games, err := repo.Games(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 2 || games[0].ID != "g3" || games[1].ID != "g2" {
		t.Fatalf("games=%v", games)
	}
}

func TestRecorderArchivesFinishedGames(t *testing.T) {
	repo := testRepo(t)
	rec := NewRecorder(repo)
	s := game.NewSession(game.Config{GameID: "g_rec", Recorder: rec})
	p := four.P1
	for _, col := range []int{0, 0, 1, 1, 2, 2, 3} {
		snap, err := s.ApplyMove(p, col)
		if err != nil {
			t.Fatal(err)
		}
		if !snap.Over() {
			p = p.Other()
		}
	}

	g, err := repo.Game("g_rec")
	if err != nil {
		t.Fatal(err)
	}
	if g.Result != ResultPlayer1 || g.Winner != 1 || g.Moves != 7 || g.Drops != "0011223" {
		t.Fatalf("archived %+v", g)
	}
	moves, err := repo.Moves("g_rec")
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 7 {
		t.Fatalf("archived %d moves, want 7", len(moves))
	}
	for i, m := range moves {
		if m.Number != i+1 {
			t.Fatalf("move %d numbered %d", i, m.Number)
		}
	}
	if last := moves[6]; last.Col != 3 || last.Row != 5 || last.Player != 1 {
		t.Fatalf("final move %+v", last)
	}
}

func TestRecorderSkipsUnfinishedGames(t *testing.T) {
	repo := testRepo(t)
	rec := NewRecorder(repo)
	s := game.NewSession(game.Config{GameID: "g_open", Recorder: rec})
	if _, err := s.ApplyMove(four.P1, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Game("g_open"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("unfinished game was archived: err=%v", err)
	}
}

func TestRecorderKeepsLatestAfterReset(t *testing.T) {
	repo := testRepo(t)
	rec := NewRecorder(repo)
	s := game.NewSession(game.Config{GameID: "g_reset", Recorder: rec})
	play := func(drops []int) {
		p := four.P1
		for _, col := range drops {
			snap, err := s.ApplyMove(p, col)
			if err != nil {
				t.Fatal(err)
			}
			if !snap.Over() {
				p = p.Other()
			}
		}
	}
	play([]int{0, 0, 1, 1, 2, 2, 3})
	s.Reset()
	play([]int{0, 1, 0, 1, 0, 1, 0})

	g, err := repo.Game("g_reset")
	if err != nil {
		t.Fatal(err)
	}
	if g.Drops != "0101010" || g.Result != ResultPlayer1 {
		t.Fatalf("archived %+v, want the replay", g)
	}
	games, err := repo.Games(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 1 {
		t.Fatalf("%d archives for one session", len(games))
	}
}
