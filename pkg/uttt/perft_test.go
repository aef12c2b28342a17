package uttt

import (
	"context"
	"testing"
)

const (
	drawListing    = "0,1,9,4,36,7,70,71,79,67,43,63,20,21,31,40,37,13,38,23,49,22,10,14,52,55,11,50,46,30,29,27,32,33,58,78,59,72,57"
	earlyMidgame   = "0, 3, 27, 4, 36, 5, 46, 13, 37, 12, 28, 14"
	startposPerft6 = 33782544
)

func TestPerftShallow(t *testing.T) {
	pos := NewPosition()
	tests := []struct {
		depth int
		nodes uint64
	}{
		{0, 81},
		{1, 720},
	}

	for _, tt := range tests {
		if got := Perft(pos, tt.depth); got != tt.nodes {
			t.Errorf("Perft(%d)=%d, want %d", tt.depth, got, tt.nodes)
		}
	}
}

func TestPerftStartpos(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full perft in short mode")
	}

	if got := Perft(NewPosition(), 6); got != startposPerft6 {
		t.Errorf("Perft(6)=%d, want %d", got, startposPerft6)
	}
}

func TestPerftDrawIn5(t *testing.T) {
	pos, err := FromMoveList(drawListing)
	if err != nil {
		t.Fatal(err)
	}

	if got := Perft(pos, 5); got != 72 {
		t.Errorf("Perft(5)=%d, want 72", got)
	}
	if got := Perft(pos, 6); got != 0 {
		t.Errorf("Perft(6)=%d, want 0", got)
	}
}

func TestPerftEarlyMidgame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping midgame perft in short mode")
	}

	pos, err := FromMoveList(earlyMidgame)
	if err != nil {
		t.Fatal(err)
	}

	if got := Perft(pos, 5); got != 4876350 {
		t.Errorf("Perft(5)=%d, want 4876350", got)
	}
}

func TestDivide(t *testing.T) {
	pos := NewPosition()
	total := uint64(0)
	entries := Divide(pos, 2)
	for _, e := range entries {
		total += e.Nodes
	}

	if len(entries) != NumCells {
		t.Errorf("root moves=%d, want %d", len(entries), NumCells)
	}
	if want := Perft(pos, 2); total != want {
		t.Errorf("sum of divide=%d, want %d", total, want)
	}
}

func TestPerftParallel(t *testing.T) {
	pos, err := FromMoveList(earlyMidgame)
	if err != nil {
		t.Fatal(err)
	}

	got, err := PerftParallel(context.Background(), pos, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if want := Perft(pos, 3); got != want {
		t.Errorf("PerftParallel=%d, want %d", got, want)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := PerftParallel(ctx, pos, 3, 4); err == nil {
		t.Error("cancelled context should abort the count")
	}
}

func BenchmarkPerft4(b *testing.B) {
	pos := NewPosition()
	for i := 0; i < b.N; i++ {
		Perft(pos, 4)
	}
}
