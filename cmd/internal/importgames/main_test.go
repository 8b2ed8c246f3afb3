package importgames

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func record(cols ...int) *gameRecord {
	rec := &gameRecord{
		GameID:    "game_test",
		StartTime: "2025-08-01T10:00:00.123456",
		EndTime:   "2025-08-01T10:05:00.654321",
		Result:    "player1_won",
		Winner:    1,
	}
	for i, col := range cols {
		rec.Moves = append(rec.Moves, moveRecord{
			MoveNumber: i + 1,
			Player:     1 + i%2,
			Column:     col,
		})
	}
	return rec
}

func TestImportOne(t *testing.T) {
	a, err := importOne(record(0, 1, 0, 1, 0, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	g := a.Game
	if g.ID != "game_test" || g.Result != "player1_won" || g.Winner != 1 {
		t.Errorf("game row: %+v", g)
	}
	if g.Drops != "0101010" || g.Moves != 7 {
		t.Errorf("drops=%q moves=%d", g.Drops, g.Moves)
	}
	if g.Rows != 6 || g.Cols != 7 {
		t.Errorf("dimensions %dx%d, want 6x7", g.Rows, g.Cols)
	}
	if g.Started.IsZero() || !g.Started.Before(g.Ended) {
		t.Errorf("timestamps: started=%v ended=%v", g.Started, g.Ended)
	}
	if len(a.Moves) != 7 {
		t.Fatalf("got %d move rows", len(a.Moves))
	}
	last := a.Moves[6]
	if last.Number != 7 || last.Player != 1 || last.Col != 0 || last.Row != 2 {
		t.Errorf("last move row: %+v", last)
	}
}

func TestImportOneRejects(t *testing.T) {
	cases := []struct {
		name string
		rec  *gameRecord
		want string
	}{
		{
			name: "unfinished",
			rec: func() *gameRecord {
				r := record(0, 1)
				r.Result = ""
				return r
			}(),
			want: "not finished",
		},
		{
			name: "result before game over",
			rec:  record(0, 1, 0),
			want: "not finished",
		},
		{
			name: "wrong winner",
			rec: func() *gameRecord {
				r := record(0, 1, 0, 1, 0, 1, 0)
				r.Winner = 2
				return r
			}(),
			want: "recorded winner",
		},
		{
			name: "wrong result",
			rec: func() *gameRecord {
				r := record(0, 1, 0, 1, 0, 1, 0)
				r.Result = "player2_won"
				return r
			}(),
			want: "recorded result",
		},
		{
			name: "illegal column",
			rec:  record(9, 1, 0, 1, 0, 1, 0),
			want: "column",
		},
		{
			name: "bad numbering",
			rec: func() *gameRecord {
				r := record(0, 1, 0, 1, 0, 1, 0)
				r.Moves[3].MoveNumber = 9
				return r
			}(),
			want: "numbered",
		},
		{
			name: "wrong player",
			rec: func() *gameRecord {
				r := record(0, 1, 0, 1, 0, 1, 0)
				r.Moves[2].Player = 2
				return r
			}(),
			want: "by player",
		},
		{
			name: "missing id",
			rec: func() *gameRecord {
				r := record(0, 1, 0, 1, 0, 1, 0)
				r.GameID = ""
				return r
			}(),
			want: "game_id",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := importOne(tc.rec)
			if err == nil {
				t.Fatal("import succeeded")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q, want %q", err, tc.want)
			}
		})
	}
}

func TestReadRecords(t *testing.T) {
	dir := t.TempDir()

	pretty := filepath.Join(dir, "game_a.json")
	if err := os.WriteFile(pretty, []byte(`{
  "game_id": "game_a",
  "start_time": "2025-08-01T10:00:00",
  "moves": [
    {"move_number": 1, "player": 1, "column": 3}
  ],
  "result": null,
  "winner": null
}`), 0644); err != nil {
		t.Fatal(err)
	}

	lines := filepath.Join(dir, "batch.jsonl")
	if err := os.WriteFile(lines, []byte(
		`{"game_id": "game_b", "moves": [], "result": "draw"}`+"\n"+
			`{"game_id": "game_c", "moves": [], "result": "draw"}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, path := range []string{pretty, lines} {
		if err := readRecords(path, func(rec *gameRecord) {
			ids = append(ids, rec.GameID)
		}); err != nil {
			t.Fatalf("%s: %v", path, err)
		}
	}
	if got := strings.Join(ids, ","); got != "game_a,game_b,game_c" {
		t.Errorf("read %q", got)
	}

	files, err := expand([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "game_a.json" {
		t.Errorf("expand found %v, want just game_a.json", files)
	}
}

func TestParseTime(t *testing.T) {
	got := parseTime("2025-08-01T10:00:00.123456")
	want := time.Date(2025, 8, 1, 10, 0, 0, 123456000, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseTime=%v, want %v", got, want)
	}
	if !parseTime("not a time").IsZero() {
		t.Error("junk timestamp wants zero time")
	}
}
