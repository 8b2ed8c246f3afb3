package ai

import (
	"context"
	"testing"

	"github.com/nelhage/fourline/four"
	"github.com/nelhage/fourline/fourtest"
)

func TestRandomSeeded(t *testing.T) {
	g := four.New(four.Config{})
	a, b := NewRandom(42), NewRandom(42)
	for i := 0; i < 20; i++ {
		ca, err := a.SelectColumn(context.Background(), g, four.P1)
		if err != nil {
			t.Fatal(err)
		}
		cb, err := b.SelectColumn(context.Background(), g, four.P1)
		if err != nil {
			t.Fatal(err)
		}
		if ca != cb {
			t.Fatalf("same seed diverged at pick %d: %d != %d", i, ca, cb)
		}
	}
}

func TestRandomSkipsFullColumns(t *testing.T) {
	// Column 0 is filled to the top without a win.
	g := fourtest.Grid("000000")
	r := NewRandom(1)
	for i := 0; i < 100; i++ {
		col, err := r.SelectColumn(context.Background(), g, four.P1)
		if err != nil {
			t.Fatal(err)
		}
		if col == 0 {
			t.Fatal("picked a full column")
		}
		if !g.ColumnFree(col) {
			t.Fatalf("picked unplayable col %d", col)
		}
	}
}

func TestRandomNoLegalMove(t *testing.T) {
	g := fourtest.Grid(drawnGame)
	r := NewRandom(1)
	if _, err := r.SelectColumn(context.Background(), g, four.P1); err != ErrNoLegalMove {
		t.Errorf("got err=%v, want ErrNoLegalMove", err)
	}
}
