// Package logs archives finished games to a SQL database for later
// analysis and training-data extraction.
package logs

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nelhage/fourline/four"
)

// Game is one archived game. Drops holds the column notation of the
// full move sequence, so a game can be replayed from this row alone.
type Game struct {
	ID      string    `db:"id"`
	Started time.Time `db:"started"`
	Ended   time.Time `db:"ended"`
	Rows    int       `db:"grid_rows"`
	Cols    int       `db:"grid_cols"`
	Result  string    `db:"result"`
	Winner  int       `db:"winner"`
	Moves   int       `db:"moves"`
	Drops   string    `db:"drops"`
}

// Move is one archived placement.
type Move struct {
	Game   string `db:"game"`
	Number int    `db:"number"`
	Player int    `db:"player"`
	Col    int    `db:"col"`
	Row    int    `db:"landed"`
}

const (
	ResultPlayer1 = "player1_won"
	ResultPlayer2 = "player2_won"
	ResultDraw    = "draw"
)

// ResultFor maps a winner to the archived result string.
func ResultFor(winner four.Player) string {
	switch winner {
	case four.P1:
		return ResultPlayer1
	case four.P2:
		return ResultPlayer2
	}
	return ResultDraw
}

type Repository struct {
	db *sqlx.DB
}

// Open connects to the archive and creates the schema if needed. The
// driver is anything registered with database/sql; the query layer
// rebinds placeholders to match.
func Open(driver, dsn string) (*Repository, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	for _, stmt := range []string{
		createGamesTable,
		createGamesIndex,
		createMovesTable,
		createMovesIndex,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Repository{db: db}, nil
}

// InsertGame archives g and its moves, replacing any prior archive
// under the same id. A session that was reset and replayed keeps only
// its latest finished game, like the recorder it feeds from.
func (r *Repository) InsertGame(g *Game, moves []Move) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := insertGame(tx, g, moves); err != nil {
		return err
	}
	return tx.Commit()
}

// Archived pairs a game row with its move rows for batch inserts.
type Archived struct {
	Game  *Game
	Moves []Move
}

// InsertGames archives a batch in one transaction.
func (r *Repository) InsertGames(gs []Archived) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, g := range gs {
		if err := insertGame(tx, g.Game, g.Moves); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertGame(tx *sqlx.Tx, g *Game, moves []Move) error {
	if _, err := tx.Exec(tx.Rebind(deleteGameStmt), g.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(tx.Rebind(deleteMovesStmt), g.ID); err != nil {
		return err
	}
	if _, err := tx.NamedExec(insertGameStmt, g); err != nil {
		return err
	}
	for i := range moves {
		if _, err := tx.NamedExec(insertMoveStmt, &moves[i]); err != nil {
			return err
		}
	}
	return nil
}

// Game loads one archived game by id.
func (r *Repository) Game(id string) (*Game, error) {
	var g Game
	if err := r.db.Get(&g, r.db.Rebind(selectGameStmt), id); err != nil {
		return nil, err
	}
	return &g, nil
}

// Games lists the most recently finished games.
func (r *Repository) Games(limit int) ([]*Game, error) {
	cur, err := r.db.Queryx(r.db.Rebind(selectGamesStmt), limit)
	if err != nil {
		return nil, err
	}
	defer cur.Close()
	var out []*Game
	for cur.Next() {
		var g Game
		if err := cur.StructScan(&g); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}
	return out, cur.Err()
}

// Moves loads the archived placements of one game in order.
func (r *Repository) Moves(id string) ([]Move, error) {
	cur, err := r.db.Queryx(r.db.Rebind(selectMovesStmt), id)
	if err != nil {
		return nil, err
	}
	defer cur.Close()
	var out []Move
	for cur.Next() {
		var m Move
		if err := cur.StructScan(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

func (r *Repository) Close() error {
	return r.db.Close()
}
