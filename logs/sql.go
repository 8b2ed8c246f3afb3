package logs

const createGamesTable = `
CREATE TABLE IF NOT EXISTS games (
  id varchar not null,
  started datetime,
  ended datetime,
  grid_rows integer not null,
  grid_cols integer not null,
  result varchar not null,
  winner integer not null,
  moves integer not null,
  drops varchar not null
)`

const createGamesIndex = `
CREATE INDEX IF NOT EXISTS games_id ON games (id)
`

const createMovesTable = `
CREATE TABLE IF NOT EXISTS moves (
  game varchar not null,
  number integer not null,
  player integer not null,
  col integer not null,
  landed integer not null
)`

const createMovesIndex = `
CREATE INDEX IF NOT EXISTS moves_game ON moves (game)
`

const insertGameStmt = `
INSERT INTO games (id, started, ended, grid_rows, grid_cols, result, winner, moves, drops)
VALUES (:id, :started, :ended, :grid_rows, :grid_cols, :result, :winner, :moves, :drops)
`

const insertMoveStmt = `
INSERT INTO moves (game, number, player, col, landed)
VALUES (:game, :number, :player, :col, :landed)
`

const deleteGameStmt = `DELETE FROM games WHERE id = ?`

const deleteMovesStmt = `DELETE FROM moves WHERE game = ?`

const selectGameStmt = `SELECT * FROM games WHERE id = ?`

const selectGamesStmt = `SELECT * FROM games ORDER BY ended DESC LIMIT ?`

const selectMovesStmt = `SELECT * FROM moves WHERE game = ? ORDER BY number`
